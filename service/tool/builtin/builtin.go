// Package builtin registers the stock tool services.
package builtin

import (
	"github.com/viant/gator/extension"
	"github.com/viant/gator/service/tool/draft"
	"github.com/viant/gator/service/tool/kb"
	"github.com/viant/gator/service/tool/notify"
	"github.com/viant/gator/service/tool/runbook"
	"github.com/viant/gator/service/tool/system/restart"
	"github.com/viant/gator/service/tool/ticket"
	"github.com/viant/gator/service/tool/webhook"
)

// Register adds every built-in tool service to the registry.
func Register(actions *extension.Actions) {
	actions.Register(kb.New())
	actions.Register(ticket.New())
	actions.Register(runbook.New())
	actions.Register(notify.New())
	actions.Register(restart.New())
	actions.Register(webhook.New())
	actions.Register(draft.New())
}
