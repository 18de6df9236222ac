package config

// Specification of image resizing mode for copied assets.
// ENUM(none, keepAR, stretch)
type ImageResizeMode int
