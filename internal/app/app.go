package app

import (
	"go.uber.org/fx"

	"github.com/waybill-io/waybill/internal/config"
	"github.com/waybill-io/waybill/internal/database"
	"github.com/waybill-io/waybill/internal/logger"
	"github.com/waybill-io/waybill/internal/messaging"
	"github.com/waybill-io/waybill/internal/observability"
	repositoryitem "github.com/waybill-io/waybill/internal/repository/item"
	repositoryorder "github.com/waybill-io/waybill/internal/repository/order"
	httpserver "github.com/waybill-io/waybill/internal/server/http"
	serviceitem "github.com/waybill-io/waybill/internal/service/item"
	serviceorder "github.com/waybill-io/waybill/internal/service/order"
	transporthttp "github.com/waybill-io/waybill/internal/transport/http"
	"github.com/waybill-io/waybill/internal/worker"
	workerorder "github.com/waybill-io/waybill/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositoryitem.Module,
	serviceorder.Module,
	serviceitem.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
