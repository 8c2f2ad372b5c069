package model

// ContentAsset is an uploaded media file (image/audio/video) referenced by
// questions, options and matching pairs through its opaque id. The core
// never touches the bytes, only the reference.
// swagger:model ContentAsset
type ContentAsset struct {
	UUIDBase

	UploaderID      uint    `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Kind            string  `gorm:"size:20" json:"kind"` // image, audio, video
	FileName        string  `gorm:"size:255" json:"fileName"`
	MimeType        string  `gorm:"size:100" json:"mimeType"`
	URL             string  `gorm:"size:500" json:"url"`
	SizeBytes       int64   `json:"sizeBytes"`
	DurationSeconds float64 `gorm:"default:0" json:"durationSeconds"` // video/audio only
}

func (ContentAsset) TableName() string {
	return "content_assets"
}
