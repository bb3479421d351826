package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentBackend stores whole JSON documents by name. Every mutation is a full
// read-modify-write of one document, there is no locking across requests.
type DocumentBackend interface {
	Name() string
	ReadDocument(ctx context.Context, name string) ([]byte, error)
	WriteDocument(ctx context.Context, name string, body []byte) error
	Close() error
}

type StoreService struct {
	appContext.DefaultService

	backend DocumentBackend

	driver  string
	dataDir string
	dsn     string
}

const STORE_SVC = "store_svc"

func (svc StoreService) Id() string {
	return STORE_SVC
}

func (svc *StoreService) Configure(ctx *appContext.Context) error {
	svc.driver = strings.ToLower(shared.GetEnv("STORAGE_DRIVER", "file"))
	svc.dataDir = shared.GetEnv("DATA_DIR", "data")
	svc.dsn = shared.GetEnv("DATABASE_URL", shared.GetEnv("DB_DATABASE", ""))

	return svc.DefaultService.Configure(ctx)
}

func (svc *StoreService) Start() (err error) {
	switch svc.driver {
	case "file", "":
		svc.backend, err = newFileBackend(svc.dataDir)
	case "postgres", "sqlite":
		svc.backend, err = openGormBackend(svc.driver, svc.dsn)
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", svc.driver)
	}
	if err != nil {
		return err
	}

	log.WithField("backend", svc.backend.Name()).Info("Document store ready")
	return nil
}

func (svc *StoreService) Shutdown() {
	if svc.backend != nil {
		if err := svc.backend.Close(); err != nil {
			log.WithError(err).Warn("Failed to close document store")
		}
	}
}

func (svc *StoreService) Backend() string {
	if svc.backend == nil {
		return ""
	}
	return svc.backend.Name()
}

// Load decodes the named document into dest. A document that was never written leaves
// dest untouched and is not an error.
func (svc *StoreService) Load(ctx context.Context, name string, dest interface{}) error {
	body, err := svc.backend.ReadDocument(ctx, name)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(body) == 0 {
		return nil
	}

	if err := shared.JSON().Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (svc *StoreService) Save(ctx context.Context, name string, v interface{}) error {
	body, err := shared.JSON().Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := svc.backend.WriteDocument(ctx, name, body); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
