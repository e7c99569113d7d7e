// Package backend resolves the web application the predict function serves.
//
// The application is hosted outside the function bundle, so it is selected
// by name at cold start instead of being linked in: drivers register an
// Opener under a name, and the configured driver is opened once per process.
// The built-in "proxy" driver forwards requests to a separately deployed
// backend over HTTP.
package backend

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/utils"
)

// Opener builds the backend application from config.
type Opener func(cfg config.BackendConfig) (http.Handler, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]Opener{}
)

func init() {
	Register(constants.BackendDriverProxy, openProxy)
}

// Register makes a backend available under name. It panics if name is
// registered twice or opener is nil, like database/sql.Register.
func Register(name string, opener Opener) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if opener == nil {
		panic("backend: Register opener is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("backend: Register called twice for driver " + name)
	}
	drivers[name] = opener
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open resolves the configured backend application.
func Open(cfg config.BackendConfig) (http.Handler, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DefaultBackendDriver
	}
	driversMu.RLock()
	opener, ok := drivers[driver]
	driversMu.RUnlock()
	if !ok {
		return nil, utils.Errorf("unknown backend driver %q (registered: %v)", driver, Drivers())
	}
	return opener(cfg)
}

// ResolveModelsDir returns where staged models live at runtime: the
// configured directory, else "models" under $LAMBDA_TASK_ROOT, else "models"
// next to the running executable.
func ResolveModelsDir(cfg config.BackendConfig) string {
	if cfg.ModelsDir != "" {
		return cfg.ModelsDir
	}
	if root := os.Getenv(constants.EnvLambdaTaskRoot); root != "" {
		return filepath.Join(root, constants.ModelsDirName)
	}
	exe, err := os.Executable()
	if err != nil {
		return constants.ModelsDirName
	}
	return filepath.Join(filepath.Dir(exe), constants.ModelsDirName)
}

// ExportModelDir sets MODEL_DIR to dir when dir exists, so the backend finds
// the staged weights instead of its built-in path. It reports whether the
// variable was set.
func ExportModelDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		utils.Debug("staged models directory %s not present, leaving %s unset", dir, constants.EnvModelDir)
		return false
	}
	if err := os.Setenv(constants.EnvModelDir, dir); err != nil {
		utils.Warn("failed to set %s: %v", constants.EnvModelDir, err)
		return false
	}
	utils.Debug("%s=%s", constants.EnvModelDir, dir)
	return true
}
