// server.go поднимает HTTP-эндпоинт /metrics для Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Serve блокирующе слушает addr и отдаёт /metrics.
// Запускается в отдельной горутине; ошибка логируется,
// работу основного процесса не прерывает.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithField("addr", addr).Info("Метрики доступны на /metrics")
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Error("Сервер метрик остановился")
	}
}
