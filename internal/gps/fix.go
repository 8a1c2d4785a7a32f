package gps

// Fix represents a single combined GPS fix suitable for JSON and MQTT. The
// fix stream is the absolute time reference for the IMU's 1PPS-relative
// timestamps: consumers pair Fix.Time with Sample.TimestampUS.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // e.g. "2026-08-25"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void), etc.
}
