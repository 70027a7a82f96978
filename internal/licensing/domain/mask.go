package domain

// MaskLicenseKey returns a display form of a license key that keeps only the
// first and last few characters.
func MaskLicenseKey(key string) string {
	const keep = 6
	if len(key) <= keep*2 {
		return "****"
	}
	return key[:keep] + "..." + key[len(key)-keep:]
}
