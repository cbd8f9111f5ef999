package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/config"
	"github.com/stretchr/testify/suite"
)

// TestConfig - внешние тесты настроек
func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

type ConfigSuite struct {
	suite.Suite
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := config.Load("FDBSCAN_TEST_NONE", "")
	s.Require().NoError(err)

	s.Equal(fdbscan.TypeParquet, cfg.Format)
	s.Equal(fdbscan.TypeOffload, cfg.Class)
	s.Equal(config.TransportDirect, cfg.Transport)
	s.Equal(config.StoreLocal, cfg.Store)
	s.Equal(time.Minute, cfg.Timeout)
	s.Equal(1, cfg.DB)
	s.True(cfg.UseThreads)

	off := cfg.Offload()
	s.Equal(cfg.DataPool, off.DataPool)
	s.Equal(cfg.User, off.User)
}

func (s *ConfigSuite) TestFileAndEnv() {
	file := filepath.Join(s.T().TempDir(), "fdbscan.yaml")
	s.Require().NoError(os.WriteFile(file, []byte(`
format: ipc
data_pool: pool_from_file
transport: amqp
timeout: 30s
minio:
  endpoint: minio:9000
  bucket: from-file
`), 0600))

	s.T().Setenv("FDBSCAN_TEST_DATA_POOL", "pool_from_env")
	s.T().Setenv("FDBSCAN_TEST_MINIO_BUCKET", "from-env")
	s.T().Setenv("FDBSCAN_TEST_VERIFY", "true")

	cfg, err := config.Load("FDBSCAN_TEST", file)
	s.Require().NoError(err)

	s.Equal("ipc", cfg.Format)
	s.Equal("pool_from_env", cfg.DataPool)
	s.Equal(config.TransportAMQP, cfg.Transport)
	s.Equal(30*time.Second, cfg.Timeout)
	s.Equal("minio:9000", cfg.Minio.Endpoint)
	s.Equal("from-env", cfg.MinioConfig().Bucket)
	s.True(cfg.Verify)
}

func (s *ConfigSuite) TestInvalid() {
	if _, err := config.Load("", "/not/exists.yaml"); s.Error(err) {
		s.True(errx.Is(err, config.ErrLoad))
	}

	s.T().Setenv("FDBSCAN_BAD_TRANSPORT", "grpc")

	if _, err := config.Load("FDBSCAN_BAD", ""); s.Error(err) {
		s.True(errx.Is(err, config.ErrValidate))
	}

	cfg := config.Config{DB: 0xFF, Transport: config.TransportFDB, Store: config.StoreFDB, DataPool: "p"}
	if err := cfg.Validate(); s.Error(err) {
		s.True(errx.Is(err, config.ErrValidate))
	}

	cfg.DB = 3
	s.NoError(cfg.Validate())
}
