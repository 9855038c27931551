package heli

// Model directory discovery (§6 "Environment").

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverModelDir resolves the model directory to load, in order:
// an explicit flagValue, a "LanguageModels" directory beside the
// running executable, or "./LanguageModels".
func DiscoverModelDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if exe, err := os.Executable(); err == nil {
		packaged := filepath.Join(filepath.Dir(exe), "LanguageModels")
		if st, err := os.Stat(packaged); err == nil && st.IsDir() {
			return packaged, nil
		}
	}
	if st, err := os.Stat("./LanguageModels"); err == nil && st.IsDir() {
		return "./LanguageModels", nil
	}
	return "", fmt.Errorf("heli: no model directory found (pass --model-dir)")
}
