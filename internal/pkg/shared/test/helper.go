package test

import (
	"github.com/telisik/telisik/internal/pkg/shared/fs"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"
)

// DirEnv get the root app directory and setup log for testing
func DirEnv(dbg bool) (dir string, err error) {
	dir, err = fs.GetDir(true)
	if err == nil {
		err = log.Setup(dbg)
	}
	return
}
