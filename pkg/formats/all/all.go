// Package all is a convenience wrapper that registers all known advertisement
// format decoders. Importing this package enables the gotherm dispatcher to
// recognize every supported sensor encoding.
package all

// Import each format package for its side-effects (the init() function).
import (
	_ "github.com/mlsorensen/gotherm/pkg/formats/bthome"
	_ "github.com/mlsorensen/gotherm/pkg/formats/lywsdcgq"
	_ "github.com/mlsorensen/gotherm/pkg/formats/pvvx"
)
