package models

import "time"

// ImageMetadata is what could be read from an uploaded image. Every pointer field is optional.
type ImageMetadata struct {
	FileName   string      `json:"fileName" bson:"fileName"`
	FileSize   int64       `json:"fileSize" bson:"fileSize"`
	MimeType   string      `json:"mimeType" bson:"mimeType"`
	Format     string      `json:"format,omitempty" bson:"format,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Created    time.Time   `json:"created" bson:"created"`
	Modified   time.Time   `json:"modified" bson:"modified"`
	CapturedAt *time.Time  `json:"capturedAt,omitempty" bson:"capturedAt,omitempty"`
	GPS        *GPS        `json:"gps,omitempty" bson:"gps,omitempty"`
	Camera     *Camera     `json:"camera,omitempty" bson:"camera,omitempty"`
}

// Dimensions of an image in pixels
type Dimensions struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// GPS is the capture position recorded in EXIF
type GPS struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Camera identifies the capturing device
type Camera struct {
	Make  string `json:"make,omitempty" bson:"make,omitempty"`
	Model string `json:"model,omitempty" bson:"model,omitempty"`
}
