package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// zapLog adapts a zap logger to the whatsmeow logger interface.
type zapLog struct {
	s *zap.SugaredLogger
}

func newZapLog(logger *zap.Logger, module string) waLog.Logger {
	return zapLog{s: logger.Named(module).Sugar()}
}

func (l zapLog) Debugf(msg string, args ...interface{}) { l.s.Debugf(msg, args...) }
func (l zapLog) Infof(msg string, args ...interface{}) { l.s.Infof(msg, args...) }
func (l zapLog) Warnf(msg string, args ...interface{}) { l.s.Warnf(msg, args...) }
func (l zapLog) Errorf(msg string, args ...interface{}) { l.s.Errorf(msg, args...) }
func (l zapLog) Sub(module string) waLog.Logger {
	return zapLog{s: l.s.Named(module)}
}

// WhatsAppConnection opens the device store in postgres and connects the
// first device. An unpaired device prints pairing codes to the log and
// connects once scanned.
func WhatsAppConnection(ctx context.Context, databaseURL string, logger *zap.Logger) (*whatsmeow.Client, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open whatsapp store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping whatsapp store: %w", err)
	}

	container := sqlstore.NewWithDB(db, "postgres", newZapLog(logger, "whatsapp.db"))
	if err := container.Upgrade(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("upgrade whatsapp store: %w", err)
	}
	device, err := container.GetFirstDevice()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("get whatsapp device: %w", err)
	}

	client := whatsmeow.NewClient(device, newZapLog(logger, "whatsapp"))
	if client.Store.ID == nil {
		ch, err := client.GetQRChannel(context.Background())
		if err != nil && !errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
			_ = db.Close()
			return nil, fmt.Errorf("get whatsapp QR channel: %w", err)
		}
		if ch != nil {
			go func() {
				for evt := range ch {
					if evt.Event == "code" {
						logger.Info("WhatsApp pairing code", zap.String("code", evt.Code))
					} else {
						logger.Info("WhatsApp login event", zap.String("event", evt.Event))
					}
				}
			}()
		}
	}

	if err := client.Connect(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect whatsapp: %w", err)
	}
	logger.Info("WhatsApp client connected", zap.Bool("paired", client.Store.ID != nil))
	return client, nil
}
