//go:build !windows

package env

// DetectToolsets reports no toolsets off Windows; the GCC toolchain is
// assumed and never multi-toolset.
func DetectToolsets() []Toolset {
	return nil
}
