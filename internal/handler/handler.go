package handler

import (
	"github.com/maikolmontes/pymes-manager/pkg/config"
)

var uploadDir = "uploads/imagenesnegocios"

// Initialize wires handler-level configuration. Must be called before
// routes are served.
func Initialize(cfg *config.Config) {
	if cfg.Upload.Dir != "" {
		uploadDir = cfg.Upload.Dir
	}
}
