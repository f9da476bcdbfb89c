package cli

import (
	"github.com/julianstephens/activities/internal/store"
	"github.com/julianstephens/activities/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	bridge := tui.NewBridge()
	st := ctx.NewStore(store.WithNavigator(bridge), store.WithNotifier(bridge))
	return tui.Run(ctx.Ctx, st, bridge, tui.WithLocation(ctx.loc()))
}
