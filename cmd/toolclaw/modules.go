package main

// First-party modules compiled into the binary.
import (
	_ "github.com/flemzord/toolclaw/internal/cron"
	_ "github.com/flemzord/toolclaw/internal/gateway"
	_ "github.com/flemzord/toolclaw/modules/memory/sqlite"
	_ "github.com/flemzord/toolclaw/modules/tool/calculator"
	_ "github.com/flemzord/toolclaw/modules/tool/code_executor"
	_ "github.com/flemzord/toolclaw/modules/tool/database"
	_ "github.com/flemzord/toolclaw/modules/tool/file_editor"
)
