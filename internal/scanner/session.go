package scanner

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/payload"
	"github.com/harrylevesque/qrscan/internal/utils"
)

// Saver persists scans. files.ScanStore satisfies it.
type Saver interface {
	Save(ctx context.Context, scan *models.Scan) error
}

// Session classifies every successful decode from a Decoder.
type Session struct {
	Decoder Decoder
	// Store is optional. Repeats it rejects as duplicates are dropped.
	Store  Saver
	Logger *utils.Logger
	// Source is recorded on every scan.
	Source string
	// AutoStop ends the session after the first accepted scan.
	AutoStop bool
	OnResult func(*models.Scan)
	// OnError receives decoder and store errors. Not-found attempts are
	// never reported.
	OnError func(error)

	count atomic.Int64
}

// Count is the number of accepted scans so far.
func (s *Session) Count() int64 {
	return s.count.Load()
}

// Run consumes attempts until the decoder closes its channel, ctx is done,
// or, with AutoStop, the first scan is accepted.
func (s *Session) Run(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = utils.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	attempts, err := s.Decoder.Attempts(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a, ok := <-attempts:
			if !ok {
				return ctx.Err()
			}
			if a.Err != nil {
				if !IsNotFound(a.Err) {
					log.Warn("decode error", zap.Error(a.Err))
					s.reportError(a.Err)
				}
				continue
			}
			if s.accept(ctx, log, a) && s.AutoStop {
				return nil
			}
		}
	}
}

func (s *Session) accept(ctx context.Context, log *utils.Logger, a Attempt) bool {
	scan := models.NewScan(payload.Classify(a.Text), s.Source, a.Screenshot)
	if s.Store != nil {
		if err := s.Store.Save(ctx, scan); err != nil {
			if errors.Is(err, files.ErrDuplicate) {
				log.Debug("duplicate scan dropped", zap.String("kind", string(scan.Kind)))
				return false
			}
			log.Error("save scan", zap.Error(err))
			s.reportError(err)
			return false
		}
	}
	n := s.count.Add(1)
	log.Info("scanned",
		zap.String("id", scan.ID),
		zap.String("kind", string(scan.Kind)),
		zap.Int64("count", n))
	if s.OnResult != nil {
		s.OnResult(scan)
	}
	return true
}

func (s *Session) reportError(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}
