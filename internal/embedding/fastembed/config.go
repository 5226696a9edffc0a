package fastembed

// DefaultModel matches the 384-dimensional model the site generator names.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// Config holds configuration for the local provider.
type Config struct {
	Model    string
	CacheDir string
}
