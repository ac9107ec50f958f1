package cloudinary

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/config"
)

// ErrNotConfigured возвращается, если не заданы ключи Cloudinary
var ErrNotConfigured = apperrors.New(apperrors.KindStorage, "upload_not_configured", "image upload is not configured")

// UploadParams - подписанные параметры прямой загрузки в Cloudinary
type UploadParams struct {
	Timestamp    string `json:"timestamp"`
	Signature    string `json:"signature"`
	APIKey       string `json:"api_key"`
	CloudName    string `json:"cloud_name"`
	Folder       string `json:"folder"`
	UploadPreset string `json:"upload_preset"`
	PublicID     string `json:"public_id"`
}

// CloudinaryService подписывает параметры загрузки аватаров
type CloudinaryService struct {
	cfg config.CloudinaryConfig
	now func() time.Time
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg config.CloudinaryConfig) *CloudinaryService {
	return &CloudinaryService{cfg: cfg, now: time.Now}
}

// UploadParams создаёт параметры для загрузки аватара пользователя
func (s *CloudinaryService) UploadParams(userID uuid.UUID) (*UploadParams, error) {
	if s.cfg.APISecret == "" || s.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	publicID := fmt.Sprintf("avatar_%s_%s", userID, timestamp)

	// Подписываются все параметры, кроме api_key, cloud_name и самой подписи
	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", s.cfg.UploadFolder)
	params.Set("upload_preset", s.cfg.UploadPreset)
	params.Set("public_id", publicID)

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "upload_sign_failed", "failed to sign upload parameters")
	}

	return &UploadParams{
		Timestamp:    timestamp,
		Signature:    signature,
		APIKey:       s.cfg.APIKey,
		CloudName:    s.cfg.CloudName,
		Folder:       s.cfg.UploadFolder,
		UploadPreset: s.cfg.UploadPreset,
		PublicID:     publicID,
	}, nil
}
