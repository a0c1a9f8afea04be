package alloc

import "github.com/joshuapare/kheap/internal/logger"

// Runtime debug flag for allocation logging - controlled by KHEAP_LOG_ALLOC env var.
var logAlloc = logger.AllocLogging()
