package dto

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type SpecRequest struct {
	Kind            string  `json:"kind" validate:"required,oneof=text timestamp location image"`
	Content         string  `json:"content"`
	PositionX       float64 `json:"position_x" validate:"gte=0,lte=1"`
	PositionY       float64 `json:"position_y" validate:"gte=0,lte=1"`
	Scale           float64 `json:"scale" validate:"gt=0,lte=0.5"`
	Opacity         int     `json:"opacity" validate:"gte=0,lte=255"`
	RotationDegrees float64 `json:"rotation_degrees"`
	Color           Color   `json:"color"`
	ShadowColor     Color   `json:"shadow_color"`
	HasShadow       bool    `json:"has_shadow"`
	Enabled         bool    `json:"enabled"`
}

type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type SpecResponse struct {
	Index           int     `json:"index"`
	Kind            string  `json:"kind"`
	Content         string  `json:"content"`
	PositionX       float64 `json:"position_x"`
	PositionY       float64 `json:"position_y"`
	Scale           float64 `json:"scale"`
	Opacity         int     `json:"opacity"`
	RotationDegrees float64 `json:"rotation_degrees"`
	Color           Color   `json:"color"`
	ShadowColor     Color   `json:"shadow_color"`
	HasShadow       bool    `json:"has_shadow"`
	Enabled         bool    `json:"enabled"`
}

type SummaryResponse struct {
	Total        int  `json:"total"`
	EnabledCount int  `json:"enabled_count"`
	HasEnabled   bool `json:"has_enabled"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
