package models

// UploadURL is returned when a client asks where to PUT a new image.
type UploadURL struct {
	UploadURL string `json:"uploadURL"`
}
