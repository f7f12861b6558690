package item

import "go.uber.org/fx"

// Module provides the order item service to Fx.
var Module = fx.Provide(NewService)
