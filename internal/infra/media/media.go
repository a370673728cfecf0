package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Folder CDN 上的存放目錄
func (k Kind) Folder() string {
	if k == KindVideo {
		return "products/videos"
	}
	return "products/images"
}

var ErrUploadFailed = errors.New("media upload failed")

//go:generate mockgen -destination=mock/mock_media.go -package=mock_media . IMediaStore

type IMediaStore interface {
	// Upload 回傳可直接存取的 https URL
	Upload(ctx context.Context, file io.Reader, filename string, kind Kind) (string, error)
	Destroy(ctx context.Context, mediaURL string, kind Kind) error
}

// uploadAPI cloudinary uploader.API 中用到的部分
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryStore struct {
	api uploadAPI
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload}, nil
}

var _ IMediaStore = (*CloudinaryStore)(nil)

func (c *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string, kind Kind) (string, error) {
	result, err := c.api.Upload(ctx, file, uploader.UploadParams{
		ResourceType: string(kind),
		Folder:       kind.Folder(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUploadFailed, filename, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrUploadFailed, filename, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: %s: empty url", ErrUploadFailed, filename)
	}
	return result.SecureURL, nil
}

func (c *CloudinaryStore) Destroy(ctx context.Context, mediaURL string, kind Kind) error {
	publicID := PublicIDFromURL(mediaURL)
	if publicID == "" {
		return fmt.Errorf("cannot resolve public id from %q", mediaURL)
	}
	result, err := c.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("destroy %s: %s", publicID, result.Error.Message)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL 取 v<digits>/ 之後的目錄加上去掉副檔名的檔名
//
//	https://res.cloudinary.com/demo/image/upload/v1712/products/images/abc.jpg -> products/images/abc
func PublicIDFromURL(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil || u.Path == "" {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	name := strings.TrimSuffix(last, path.Ext(last))
	if name == "" {
		return ""
	}

	for i := len(segments) - 2; i >= 0; i-- {
		if versionSegment.MatchString(segments[i]) {
			folder := segments[i+1 : len(segments)-1]
			return strings.Join(append(folder, name), "/")
		}
	}
	return name
}
