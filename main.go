package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func main() {
	loadAmpyEnv()
	app := App()
	_ = app.Run(os.Args)
}

// loadAmpyEnv seeds AMPY_PORT and friends from the nearest .ampy file,
// searching upward from the working directory. Must run before flag
// parsing so EnvVar defaults pick the values up.
func loadAmpyEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		p := filepath.Join(dir, ".ampy")
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
