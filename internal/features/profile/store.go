// Package profile — store.go реализует in-memory хранилище профилей
// с попрофильной блокировкой.
//
// Дисциплина такая: у каждого профиля свой мьютекс, все операции
// чтения-изменения выполняются через With/WithPair под этим мьютексом.
// Два конкурентных клейма одного пользователя никогда не чередуются,
// поэтому одно окно кулдауна не может быть оплачено дважды.
// При работе с двумя профилями (реферальные начисления) блокировки
// берутся в порядке возрастания user_id — это исключает дедлок.
package profile

import (
	"sync"
	"time"
)

// entry — профиль вместе с его персональным мьютексом.
type entry struct {
	mu sync.Mutex
	p  *UserProfile
}

// Store — потокобезопасное хранилище профилей.
// Карта защищена RWMutex, каждый профиль — своим мьютексом.
type Store struct {
	mu       sync.RWMutex
	profiles map[int64]*entry
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{profiles: make(map[int64]*entry)}
}

// ensure возвращает entry пользователя, создавая профиль при первом
// обращении. Флаг created сообщает, был ли профиль только что создан.
func (s *Store) ensure(userID int64, now time.Time) (e *entry, created bool) {
	s.mu.RLock()
	e, ok := s.profiles[userID]
	s.mu.RUnlock()
	if ok {
		return e, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Перепроверяем: другой горутине могло повезти раньше
	if e, ok = s.profiles[userID]; ok {
		return e, false
	}
	e = &entry{p: NewUserProfile(userID, now)}
	s.profiles[userID] = e
	return e, true
}

// lookup возвращает entry без создания.
func (s *Store) lookup(userID int64) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.profiles[userID]
	return e, ok
}

// Exists сообщает, заведён ли профиль.
func (s *Store) Exists(userID int64) bool {
	_, ok := s.lookup(userID)
	return ok
}

// Len возвращает количество профилей.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// With выполняет fn под блокировкой профиля пользователя,
// создавая профиль при первом обращении.
func (s *Store) With(userID int64, now time.Time, fn func(p *UserProfile) error) error {
	e, _ := s.ensure(userID, now)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.p)
}

// WithExisting — как With, но без автосоздания: если профиля нет,
// fn не вызывается и возвращается ok=false.
func (s *Store) WithExisting(userID int64, fn func(p *UserProfile) error) (ok bool, err error) {
	e, found := s.lookup(userID)
	if !found {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return true, fn(e.p)
}

// CreateIfAbsent создаёт профиль, если его ещё нет, и выполняет init
// под блокировкой нового профиля. Если профиль уже существует —
// возвращает created=false, init не вызывается.
// Нужен реферальной атрибуции: она срабатывает только при первом контакте.
func (s *Store) CreateIfAbsent(userID int64, now time.Time, init func(p *UserProfile)) (created bool) {
	e, created := s.ensure(userID, now)
	if !created {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if init != nil {
		init(e.p)
	}
	return true
}

// WithPair выполняет fn под блокировками ОБОИХ профилей.
// Блокировки берутся в порядке возрастания user_id независимо от того,
// в каком порядке переданы аргументы — фиксированный глобальный порядок
// исключает дедлок между встречными парными операциями.
// Оба профиля создаются при необходимости.
func (s *Store) WithPair(aID, bID int64, now time.Time, fn func(a, b *UserProfile) error) error {
	ea, _ := s.ensure(aID, now)
	eb, _ := s.ensure(bID, now)

	first, second := ea, eb
	if bID < aID {
		first, second = eb, ea
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	return fn(ea.p, eb.p)
}

// Get возвращает глубокую копию профиля. Копию можно читать
// без блокировок, но изменения в ней никуда не попадут.
func (s *Store) Get(userID int64) (*UserProfile, bool) {
	e, ok := s.lookup(userID)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p.Clone(), true
}

// Snapshot возвращает копии всех профилей. Каждый профиль копируется
// под своим мьютексом, поэтому запись консистентна сама по себе,
// но снимок в целом не является транзакционным срезом — для
// лидерборда, статистики и фонового сброса в БД этого достаточно.
func (s *Store) Snapshot() []*UserProfile {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.profiles))
	for _, e := range s.profiles {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*UserProfile, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.p.Clone())
		e.mu.Unlock()
	}
	return out
}

// Restore загружает профили из снапшота (например, из БД при старте).
// Вызывается до начала обработки запросов, поэтому конфликтов не бывает;
// существующие записи перезаписываются целиком.
func (s *Store) Restore(profiles []*UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		s.profiles[p.UserID] = &entry{p: p.Clone()}
	}
}
