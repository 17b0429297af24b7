package cmd

import (
	"github.com/mattsolo1/grove-stack/internal/logging"
)

var log = logging.NewLogger("grove-stack")
