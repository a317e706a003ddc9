package model

import "time"

// StyleConfig aggregates every rendering parameter for one job. It is
// supplied whole at submission and never partially mutated afterwards.
type StyleConfig struct {
	FontPrimary       string `json:"fontPrimary,omitempty"`
	FontSizePrimary   int    `json:"fontSizePrimary" validate:"required,min=8,max=200"`
	FontSecondary     string `json:"fontSecondary,omitempty"`
	FontSizeSecondary int    `json:"fontSizeSecondary" validate:"required,min=8,max=200"`

	ColorPrimary   string `json:"colorPrimary" validate:"omitempty,hexcolor"`
	ColorSecondary string `json:"colorSecondary" validate:"omitempty,hexcolor"`
	OutlineColor   string `json:"outlineColor" validate:"omitempty,hexcolor"`
	OutlineWidth   int    `json:"outlineWidth" validate:"min=0,max=16"`

	BackgroundAnim string `json:"backgroundAnim" validate:"required"`
	TextAnim       string `json:"textAnim" validate:"required"`
	CoverAnim      string `json:"coverAnim" validate:"required"`

	HWAccel    HWAccelMode `json:"hwAccel" validate:"omitempty,oneof=none nvidia amd intel"`
	FFmpegPath string      `json:"ffmpegPath,omitempty"`

	// AutoColors derives the three colors from the cover artwork at job
	// start, overriding any colors given above.
	AutoColors bool `json:"autoColors,omitempty"`
}

// GenerateRequest starts a full video generation job.
type GenerateRequest struct {
	AudioPath      string      `json:"audioPath" validate:"required"`
	CoverPath      string      `json:"coverPath" validate:"required"`
	LrcPath        string      `json:"lrcPath" validate:"required"`
	BackgroundPath string      `json:"backgroundPath,omitempty"`
	Style          StyleConfig `json:"style" validate:"required"`
}

// PreviewRequest renders a single frame at PreviewTime.
type PreviewRequest struct {
	GenerateRequest
	PreviewTime float64 `json:"previewTime" validate:"gte=0"`
}

// SubmitResponse acknowledges an accepted job.
type SubmitResponse struct {
	TaskID    string    `json:"taskId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// PreviewResult is the payload of a completed preview task.
type PreviewResult struct {
	ImagePath string `json:"imagePath"`
	ImageURL  string `json:"imageUrl"`
}

// GenerateResult is the payload of a completed generation task.
type GenerateResult struct {
	VideoPath string  `json:"videoPath"`
	VideoURL  string  `json:"videoUrl"`
	Filename  string  `json:"filename"`
	Duration  float64 `json:"duration"`
	Frames    int     `json:"frames"`
}

// ExtractColorsRequest asks for a palette derived from a cover image.
type ExtractColorsRequest struct {
	CoverPath string `json:"coverPath" validate:"required"`
}

// CatalogResponse lists the selectable options exposed to clients.
type CatalogResponse struct {
	BackgroundAnimations []string      `json:"backgroundAnimations"`
	TextAnimations       []string      `json:"textAnimations"`
	CoverAnimations      []string      `json:"coverAnimations"`
	HWAccelModes         []HWAccelMode `json:"hwAccelModes"`
	Fonts                []string      `json:"fonts"`
}
