//go:build !ocr

package ocr

// New reports the OCR engine as unavailable when the binary was built
// without the "ocr" tag. See the package documentation for enabling it.
func New(Config) (Backend, error) {
	return nil, ErrBackendUnavailable
}
