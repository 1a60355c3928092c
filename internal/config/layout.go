package config

import "io/fs"

// Directory layouts recognised by Detect.
const (
	ClassicDir     = "test"
	IntegrationDir = "test/integration"
	ScannerDir     = "test/scanner"
)

// Executables invoked by the detected layouts, relative to the root.
const (
	ProgramExecutable = "./fur"
	ScannerExecutable = "./scanner_test"
)

// Detect picks the suites from the directories present under fsys.
//
// If test/integration or test/scanner exists, the extended layout is used:
// programs in test/integration run through ./fur and scanner sources in
// test/scanner through ./scanner_test. Both suites are always registered,
// so a missing half of the extended layout is a setup error at build time.
// Otherwise the classic layout runs every program in test/ through ./fur.
func Detect(fsys fs.FS) *Config {
	if isDir(fsys, IntegrationDir) || isDir(fsys, ScannerDir) {
		return &Config{Suites: []SuiteConfig{
			{Name: "integration", Dir: IntegrationDir, Category: "program", Executable: ProgramExecutable},
			{Name: "scanner", Dir: ScannerDir, Category: "scanner", Executable: ScannerExecutable},
		}}
	}
	return &Config{Suites: []SuiteConfig{
		{Name: "classic", Dir: ClassicDir, Category: "program", Executable: ProgramExecutable},
	}}
}

func isDir(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.IsDir()
}
