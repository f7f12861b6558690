package main

import (
	"go.uber.org/fx"

	"github.com/waybill-io/waybill/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
