// "Тупой" S3 клиент загрузки — классификация и анализ файлов не его забота.

package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/deepshard/hyphae/pkg/config"
	"github.com/deepshard/hyphae/pkg/utils"
)

// S3Uploader реализует Uploader поверх S3-совместимого хранилища.
type S3Uploader struct {
	api    *minio.Client
	bucket string
	prefix string
	img    config.ImageProcConfig
}

// Проверка что S3Uploader реализует Uploader
var _ Uploader = (*S3Uploader)(nil)

// NewS3 создает uploader, используя наш конфиг.
func NewS3(cfg config.S3Config, img config.ImageProcConfig) (*S3Uploader, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &S3Uploader{
		api:    minioClient,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		img:    img,
	}, nil
}

// Upload загружает файлы по абсолютным путям и возвращает handle в том же порядке.
//
// All-or-nothing: первая же ошибка (несуществующий путь, относительный путь,
// ошибка сети) проваливает весь батч. Уже загруженные объекты при этом
// остаются в хранилище — идемпотентный ключ перезапишет их при ретрае.
//
// Изображения шире img.MaxWidth пережимаются перед загрузкой.
func (u *S3Uploader) Upload(ctx context.Context, paths []string) ([]FileHandle, error) {
	handles := make([]FileHandle, 0, len(paths))

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			return nil, fmt.Errorf("file path must be absolute: %q", p)
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", p, err)
		}

		contentType := "application/octet-stream"
		if isImagePath(p) {
			resized, rerr := PrepareImage(data, u.img.MaxWidth, u.img.Quality)
			if rerr != nil {
				// Файл с картиночным расширением, но не декодируется —
				// грузим как есть, решать агенту.
				utils.Warn("Image prepare failed, uploading raw", "path", p, "error", rerr)
			} else {
				data = resized
				contentType = "image/jpeg"
			}
		}

		key := u.objectKey(p)
		info, err := u.api.PutObject(ctx, u.bucket, key,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", p, err)
		}

		handles = append(handles, FileHandle{
			Name: filepath.Base(p),
			Key:  info.Key,
			URL:  u.presign(ctx, info.Key),
			Size: info.Size,
		})

		utils.Debug("File uploaded", "path", p, "key", info.Key, "size", info.Size)
	}

	return handles, nil
}

// objectKey строит ключ объекта из абсолютного пути файла.
func (u *S3Uploader) objectKey(p string) string {
	name := filepath.Base(p)
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// presign выдаёт временную ссылку на скачивание объекта.
//
// Ошибка presign не фатальна: handle остаётся валидным без URL.
func (u *S3Uploader) presign(ctx context.Context, key string) string {
	url, err := u.api.PresignedGetObject(ctx, u.bucket, key, 24*time.Hour, nil)
	if err != nil {
		utils.Warn("Presign failed", "key", key, "error", err)
		return ""
	}
	return url.String()
}

// isImagePath проверяет расширение файла.
func isImagePath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}
