package resolver

// Config holds configuration for the resolution core.
type Config struct {
	// FallbackDir is the root of the locally packaged resources the fallback
	// provider reads from.
	FallbackDir string `mapstructure:"fallback_dir" default:"resources"`
	// CatalogEnabled turns on catalog lookups in the bundle provider.
	CatalogEnabled bool `mapstructure:"catalog_enabled" default:"false"`
}
