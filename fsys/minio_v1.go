package fsys

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig - параметры подключения к S3-совместимому хранилищу
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ConnectMinio - подключение к бакету, бакет создается при отсутствии
func ConnectMinio(ctx context.Context, cfg MinioConfig) (_ *Minio, err error) {
	var ok bool
	var cli *minio.Client

	if cli, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	}); err != nil {
		return nil, ErrConnect.WithReason(err)
	}

	if ok, err = cli.BucketExists(ctx, cfg.Bucket); err != nil {
		return nil, ErrConnect.WithReason(err)
	}

	if !ok {
		if err = cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, ErrConnect.WithReason(err)
		}
	}

	return NewMinio(cli, cfg.Bucket), nil
}

// NewMinio - хранилище поверх готового клиента
func NewMinio(cli *minio.Client, bucket string) *Minio {
	return &Minio{cli: cli, bucket: bucket}
}

// Minio - объекты бакета как файлы фрагментов
type Minio struct {
	cli    *minio.Client
	bucket string
}

func (m *Minio) key(name string) string {
	return strings.TrimPrefix(clean(name), "/")
}

func (m *Minio) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	obj, err := m.cli.StatObject(ctx, m.bucket, m.key(name), minio.StatObjectOptions{})
	if err != nil {
		return nil, ErrStat.WithReason(remote(err, name))
	}
	return NewFileInfo(name, obj.Size, obj.LastModified), nil
}

// Open - объект читается в память целиком, произвольный доступ идет по буферу
func (m *Minio) Open(ctx context.Context, name string) (File, error) {
	obj, err := m.cli.GetObject(ctx, m.bucket, m.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, ErrOpen.WithReason(remote(err, name))
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, ErrOpen.WithReason(remote(err, name))
	}

	return NewFile(data), nil
}

func (m *Minio) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return NewWriter(func(data []byte) error {
		if _, err := m.cli.PutObject(ctx, m.bucket, m.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		}); err != nil {
			return ErrCreate.WithReason(err)
		}
		return nil
	}), nil
}

func (m *Minio) Remove(ctx context.Context, name string) error {
	if err := m.cli.RemoveObject(ctx, m.bucket, m.key(name), minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return ErrRemove.WithReason(err)
		}
	}
	return nil
}

func remote(err error, name string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound.WithReason(err).WithDetail("%s", name)
	}
	return err
}
