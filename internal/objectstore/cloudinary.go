// Package objectstore содержит клиент объектного хранилища для
// пользовательских файлов (аватары). Файлы складываются в папку
// пользователя, имя файла — публичный идентификатор.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrNotConfigured клиент создан без учетных данных хранилища.
var ErrNotConfigured = errors.New("object storage client is not configured")

// Client интерфейс объектного хранилища, потребляемый бизнес-логикой.
type Client interface {
	// Upload загружает файл и возвращает его публичный URL.
	Upload(ctx context.Context, userID, filename string, data []byte) (string, error)
	// Delete удаляет файл пользователя.
	Delete(ctx context.Context, userID, filename string) error
	// CheckConfiguration сообщает, настроен ли клиент.
	CheckConfiguration() error
}

// CloudinaryClient реализует Client поверх Cloudinary.
type CloudinaryClient struct {
	cld *cld.Cloudinary
}

// NewCloudinary создает клиент из connection URL. Пустой URL допустим:
// клиент создается в состоянии "не настроен" и сообщает об этом через
// CheckConfiguration, а не падает в конструкторе.
func NewCloudinary(connectionURL string) (*CloudinaryClient, error) {
	if connectionURL == "" {
		return &CloudinaryClient{}, nil
	}
	c, err := cld.NewFromURL(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("objectstore.NewCloudinary: %w", err)
	}
	return &CloudinaryClient{cld: c}, nil
}

// CheckConfiguration возвращает ErrNotConfigured при отсутствии учетных данных.
func (c *CloudinaryClient) CheckConfiguration() error {
	if c.cld == nil {
		return ErrNotConfigured
	}
	return nil
}

// Upload загружает файл в папку пользователя и возвращает публичный URL.
func (c *CloudinaryClient) Upload(ctx context.Context, userID, filename string, data []byte) (string, error) {
	const op = "objectstore.Upload"
	if c.cld == nil {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   userID,
		PublicID: filename,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return res.SecureURL, nil
}

// Delete удаляет файл пользователя из хранилища.
func (c *CloudinaryClient) Delete(ctx context.Context, userID, filename string) error {
	const op = "objectstore.Delete"
	if c.cld == nil {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: userID + "/" + filename,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
