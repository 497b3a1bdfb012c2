// admin.go — админские операции фасада. Каждая начинается с проверки
// уровня через RoleStore.Authorize; неавторизованный вызов получает
// Unauthorized и ничего не меняет.
//
// Требуемые уровни (owner=3, admin=2, moderator=1):
//
//	3: управление ролями, изменение политики
//	2: блокировки, задания, рассылки
//	1: статистика, монитор, просмотр политики
package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/tasks"
	"megamine.ru/mining-bot/internal/notify"
)

// AddAdmin назначает пользователю роль admin или moderator.
func (c *Core) AddAdmin(actorID, targetID int64, roleName string) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelOwner); err != nil {
		return err
	}
	role, err := admin.ParseRole(roleName)
	if err != nil {
		return err
	}
	if err := c.d.Roles.Add(targetID, role, actorID, c.d.Clock()); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"actor_id":  actorID,
		"target_id": targetID,
		"role":      role,
	}).Info("Роль назначена")
	return nil
}

// RemoveAdmin снимает роль с пользователя.
func (c *Core) RemoveAdmin(actorID, targetID int64) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelOwner); err != nil {
		return err
	}
	role, err := c.d.Roles.Remove(targetID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"actor_id":  actorID,
		"target_id": targetID,
		"role":      role,
	}).Info("Роль снята")
	return nil
}

// AdminList возвращает всех пользователей с ролями.
func (c *Core) AdminList(actorID int64) (map[int64]admin.Role, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelModerator); err != nil {
		return nil, err
	}
	return c.d.Roles.All(), nil
}

// Suspend блокирует аккаунт. Заблокированный пользователь не может
// выполнять операции, пока его не разблокируют.
func (c *Core) Suspend(ctx context.Context, actorID, targetID int64) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelAdmin); err != nil {
		return err
	}
	if !c.d.Profiles.Exists(targetID) {
		return fmt.Errorf("%w: id=%d", common.ErrUserNotFound, targetID)
	}
	c.d.Suspensions.Suspend(targetID)
	c.d.Notifier.Notify(ctx, targetID, notify.SuspensionChanged{Suspended: true})
	log.WithFields(log.Fields{"actor_id": actorID, "target_id": targetID}).Warn("Аккаунт заблокирован")
	return nil
}

// Unsuspend снимает блокировку с аккаунта.
func (c *Core) Unsuspend(ctx context.Context, actorID, targetID int64) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelAdmin); err != nil {
		return err
	}
	if err := c.d.Suspensions.Unsuspend(targetID); err != nil {
		return err
	}
	c.d.Notifier.Notify(ctx, targetID, notify.SuspensionChanged{Suspended: false})
	log.WithFields(log.Fields{"actor_id": actorID, "target_id": targetID}).Info("Аккаунт разблокирован")
	return nil
}

// CreateTask добавляет спонсорское задание в каталог.
func (c *Core) CreateTask(actorID int64, title, description, link, displayText string, reward decimal.Decimal) (tasks.Task, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelAdmin); err != nil {
		return tasks.Task{}, err
	}
	task, err := c.d.Tasks.Create(title, description, link, displayText, reward, c.d.Clock())
	if err != nil {
		return tasks.Task{}, err
	}
	log.WithFields(log.Fields{"actor_id": actorID, "task_id": task.ID}).Info("Задание создано")
	return task, nil
}

// RemoveTask удаляет задание. История выполнений уходит вместе с ним,
// выплаченные награды остаются у пользователей.
func (c *Core) RemoveTask(actorID, taskID int64) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelAdmin); err != nil {
		return err
	}
	if err := c.d.Tasks.Remove(taskID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"actor_id": actorID, "task_id": taskID}).Info("Задание удалено")
	return nil
}

// TaskStats возвращает статистику выполнения заданий.
func (c *Core) TaskStats(actorID int64) ([]tasks.TaskStats, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelModerator); err != nil {
		return nil, err
	}
	return c.d.Tasks.Stats(), nil
}

// SetConfig меняет один параметр политики начислений на лету.
func (c *Core) SetConfig(actorID int64, key, value string) error {
	if err := c.d.Roles.Authorize(actorID, admin.LevelOwner); err != nil {
		return err
	}
	if err := c.d.Settings.Set(key, value); err != nil {
		return err
	}
	log.WithFields(log.Fields{"actor_id": actorID, "param": key, "value": value}).Info("Параметр изменён")
	return nil
}

// GetConfig возвращает текущую политику начислений.
func (c *Core) GetConfig(actorID int64) (map[string]string, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelModerator); err != nil {
		return nil, err
	}
	return c.d.Settings.View(), nil
}

// AdminStats возвращает агрегированную статистику экономики.
func (c *Core) AdminStats(actorID int64) (admin.Stats, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelModerator); err != nil {
		return admin.Stats{}, err
	}
	return c.d.AdminService.CollectStats(c.d.Clock()), nil
}

// MonitorUser возвращает подробный отчёт по одному пользователю.
func (c *Core) MonitorUser(actorID, targetID int64) (admin.MonitorReport, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelModerator); err != nil {
		return admin.MonitorReport{}, err
	}
	report, ok := c.d.AdminService.Monitor(targetID, c.d.Clock())
	if !ok {
		return admin.MonitorReport{}, fmt.Errorf("%w: id=%d", common.ErrUserNotFound, targetID)
	}
	return report, nil
}

// BroadcastTargets возвращает список получателей рассылки по сегменту
// аудитории. Саму доставку делает транспортный слой.
func (c *Core) BroadcastTargets(actorID int64, target admin.BroadcastTarget) ([]int64, error) {
	if err := c.d.Roles.Authorize(actorID, admin.LevelAdmin); err != nil {
		return nil, err
	}
	ids, ok := c.d.AdminService.BroadcastTargets(target, c.d.Clock())
	if !ok {
		return nil, fmt.Errorf("%w: неизвестный сегмент %q", common.ErrInvalidInput, target)
	}
	return ids, nil
}

