package scheduler

import (
	"context"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/ashascraft/storefront-backend/pkg/notify"
	"github.com/robfig/cron/v3"
)

const digestTimeout = 30 * time.Second

// PendingOrderScheduler reminds the owner about orders nobody has confirmed yet.
type PendingOrderScheduler struct {
	cron         *cron.Cron
	spec         string
	staleAfter   time.Duration
	orderService service.OrderService
	alerter      notify.Alerter
}

func NewPendingOrderScheduler(spec string, staleAfter time.Duration, orderService service.OrderService, alerter notify.Alerter) *PendingOrderScheduler {
	if alerter == nil {
		alerter = notify.NopAlerter()
	}
	return &PendingOrderScheduler{
		cron:         cron.New(),
		spec:         spec,
		staleAfter:   staleAfter,
		orderService: orderService,
		alerter:      alerter,
	}
}

// Start registers the digest job. An invalid cron expression is returned as is.
func (s *PendingOrderScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunDigest); err != nil {
		logger.Error("Failed to add cron job for pending order digest", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Pending order scheduler started", map[string]interface{}{
		"spec":        s.spec,
		"stale_after": s.staleAfter.String(),
	})
	return nil
}

// RunDigest sends one alert listing every stale pending order. Nothing is sent when there are none.
func (s *PendingOrderScheduler) RunDigest() {
	orders, err := s.orderService.PendingOlderThan(s.staleAfter)
	if err != nil {
		logger.Error("Failed to load stale pending orders", err)
		return
	}
	if len(orders) == 0 {
		logger.Debug("No stale pending orders", nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.alerter.Alert(ctx, service.PendingDigestAlert(orders, s.staleAfter)); err != nil {
		logger.Error("Failed to send pending order digest", err, map[string]interface{}{
			"orders": len(orders),
		})
		return
	}

	logger.Info("Pending order digest sent", map[string]interface{}{
		"orders": len(orders),
	})
}

func (s *PendingOrderScheduler) Stop() {
	logger.Info("Stopping pending order scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Pending order scheduler stopped", nil)
}
