// Package http exposes order creation and tracking over REST with echo.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderCreator is implemented by commands.CreateOrderCommandHandler.
type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResponse, error)
}

// OrderTracker is implemented by queries.TrackOrderQueryHandler.
type OrderTracker interface {
	Handle(ctx context.Context, query queries.TrackOrderQuery) (queries.TrackOrderResponse, error)
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler OrderCreator
	trackOrderHandler  OrderTracker

	validate *validator.Validate
	logger   *slog.Logger
}

func NewServer(createOrderHandler OrderCreator, trackOrderHandler OrderTracker, logger *slog.Logger) *Server {
	return &Server{
		createOrderHandler: createOrderHandler,
		trackOrderHandler:  trackOrderHandler,
		validate:           validator.New(validator.WithRequiredStructEnabled()),
		logger:             logger.With("component", "http"),
	}
}

// Register mounts the API, the health check and the Prometheus endpoint.
func (s *Server) Register(e *echo.Echo) {
	e.Use(Metrics)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:trackingId", s.TrackOrder)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	cmd, err := toCreateOrderCommand(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	resp, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err, "Failed to create order")
	}

	metrics.OrdersCreated.Inc()
	return c.JSON(http.StatusCreated, CreateOrderResponse{
		OrderTrackingID: resp.TrackingID.String(),
		OrderStatus:     resp.Status.String(),
		Message:         resp.Message,
	})
}

// TrackOrder handles GET /api/v1/orders/:trackingId.
func (s *Server) TrackOrder(c echo.Context) error {
	trackingID, err := kernel.UUIDFromString(c.Param("trackingId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid tracking id",
		})
	}

	query, err := queries.NewTrackOrderQuery(trackingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid tracking id",
		})
	}

	resp, err := s.trackOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err, "Failed to track order")
	}

	return c.JSON(http.StatusOK, TrackOrderResponse{
		OrderTrackingID: resp.TrackingID.String(),
		OrderStatus:     resp.Status.String(),
		FailureMessages: resp.FailureMessages,
	})
}

// writeError maps application errors to status codes. Only 500s are logged.
func (s *Server) writeError(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: err.Error()})
	case errors.Is(err, errs.ErrInvalidOrderData):
		return c.JSON(http.StatusUnprocessableEntity, Error{Code: http.StatusUnprocessableEntity, Message: err.Error()})
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsRequired):
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}

	s.logger.ErrorContext(c.Request().Context(), message, "error", err)
	return c.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}

func toCreateOrderCommand(req CreateOrderRequest) (commands.CreateOrderCommand, error) {
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	address, err := kernel.NewStreetAddress(kernel.NewUUID(), req.Address.Street, req.Address.PostalCode, req.Address.City)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]commands.CreateOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, idErr := kernel.UUIDFromString(it.ProductID)
		if idErr != nil {
			return commands.CreateOrderCommand{}, idErr
		}

		item, itemErr := commands.NewCreateOrderItem(productID, it.Quantity,
			kernel.NewMoney(it.Price), kernel.NewMoney(it.Subtotal))
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		items = append(items, item)
	}

	return commands.NewCreateOrderCommand(customerID, restaurantID, address, kernel.NewMoney(req.Price), items)
}
