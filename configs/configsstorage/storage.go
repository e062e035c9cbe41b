package configsstorage

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"kayit.link/configs/configslog"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Storage OSS bucket'ına dosya yükler ve public URL döndürür.
// Etkinlik afişleri ve e-posta ekleri için kullanılır.
type Storage struct {
	bucket    *oss.Bucket
	publicURL string
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]+`)

// NewStorageFromEnv OSS ayarları tanımlıysa bir Storage döndürür, değilse nil.
// Storage'ın nil olması dosya yüklemeyi devre dışı bırakır, uygulamayı durdurmaz.
func NewStorageFromEnv() *Storage {
	endpoint := os.Getenv("OSS_ENDPOINT")
	keyID := os.Getenv("OSS_ACCESS_KEY_ID")
	keySecret := os.Getenv("OSS_ACCESS_KEY_SECRET")
	bucketName := os.Getenv("OSS_BUCKET")
	if endpoint == "" || keyID == "" || keySecret == "" || bucketName == "" {
		configslog.SLog.Warn("OSS ayarları eksik, dosya yükleme devre dışı.")
		return nil
	}

	client, err := oss.New(endpoint, keyID, keySecret)
	if err != nil {
		configslog.SLog.Errorf("OSS istemcisi oluşturulamadı: %v", err)
		return nil
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		configslog.SLog.Errorf("OSS bucket alınamadı: %v", err)
		return nil
	}

	publicURL := os.Getenv("OSS_PUBLIC_URL")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	}

	return &Storage{bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload dosyayı "<folder>/<uuid>-<temiz-ad>" anahtarıyla yükler ve public URL döndürür.
func (s *Storage) Upload(r io.Reader, filename, contentType, folder string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("object storage yapılandırılmamış")
	}
	if folder == "" {
		folder = "uploads"
	}

	cleanName := strings.ToLower(invalidNameChars.ReplaceAllString(filename, "-"))
	objectKey := fmt.Sprintf("%s/%s-%s", folder, uuid.NewString(), cleanName)

	opts := []oss.Option{}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := s.bucket.PutObject(objectKey, r, opts...); err != nil {
		return "", err
	}
	return s.publicURL + "/" + objectKey, nil
}
