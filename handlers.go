package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/models"
	"github.com/spdhub/spdhub_backend/utils"
	"github.com/spdhub/spdhub_backend/workflow"
	"gorm.io/gorm"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ConflictError
	switch {
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "conflicts": conflictErr.Conflicts})
	case errors.Is(err, utils.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrResourceExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger := config.GetLogger()
		config.LogError(logger, "main", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func requireIdentity(c *gin.Context) bool {
	if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func registerUserRoutes(r *gin.Engine) {
	r.POST("/users", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	})
	r.PUT("/users/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		user, err := models.UpdateUser(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	})
	r.GET("/users/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	})
	r.GET("/users", func(c *gin.Context) {
		if role := c.Query("role"); role != "" {
			users, err := models.GetUsersByRole(c.Request.Context(), models.UserRole(role))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, users)
			return
		}
		users, err := utils.FetchAllModels[models.User](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	})
}

func registerBrandRoutes(r *gin.Engine) {
	r.POST("/brands", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewBrand
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		brand, err := models.CreateBrand(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, brand)
	})
	r.PUT("/brands/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewBrand
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		brand, err := models.UpdateBrand(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, brand)
	})
	r.DELETE("/brands/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		if _, err := models.DeleteBrand(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/brands", func(c *gin.Context) {
		brands, err := utils.FetchAllModels[models.Brand](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, brands)
	})
}

func registerCatalogRoutes(r *gin.Engine) {
	r.POST("/sampling-categories", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewSamplingCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		category, err := models.CreateSamplingCategory(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	})
	r.PUT("/sampling-categories/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewSamplingCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		category, err := models.UpdateSamplingCategory(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	})
	r.GET("/brands/:id/sampling-categories", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		categories, err := models.GetSamplingCategoriesByBrand(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	})
	r.GET("/sampling-categories", func(c *gin.Context) {
		categories, err := utils.FetchAllModels[models.SamplingCategory](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	})

	r.POST("/products", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	})
	r.PUT("/products/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})
	r.DELETE("/products/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		if _, err := models.DeleteProduct(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/products", func(c *gin.Context) {
		var name *string
		if q := c.Query("name"); q != "" {
			name = &q
		}
		products, err := models.GetProductAll(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	})
}

func registerFleetRoutes(r *gin.Engine) {
	r.POST("/vehicles", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewVehicle
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		vehicle, err := models.CreateVehicle(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, vehicle)
	})
	r.PUT("/vehicles/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewVehicle
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		vehicle, err := models.UpdateVehicle(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	})
	r.GET("/vehicles", func(c *gin.Context) {
		vehicles, err := models.GetVehicleAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	})

	r.POST("/temporary-locations", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewTemporaryLocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		location, err := models.CreateTemporaryLocation(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, location)
	})
	r.PUT("/temporary-locations/:id", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewTemporaryLocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		location, err := models.UpdateTemporaryLocation(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, location)
	})
	r.GET("/temporary-locations", func(c *gin.Context) {
		locations, err := utils.FetchAllModels[models.TemporaryLocation](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, locations)
	})
}

type stockAdjustmentInput struct {
	LocationId int             `json:"location_id" binding:"required"`
	ProductId  int             `json:"product_id" binding:"required"`
	Qty        decimal.Decimal `json:"qty" binding:"required"`
	Reference  string          `json:"reference" binding:"required"`
}

type stockTransferInput struct {
	FromLocationId int             `json:"from_location_id" binding:"required"`
	ToLocationId   int             `json:"to_location_id" binding:"required"`
	ProductId      int             `json:"product_id" binding:"required"`
	Qty            decimal.Decimal `json:"qty" binding:"required"`
	Reference      string          `json:"reference" binding:"required"`
}

func registerStockRoutes(r *gin.Engine) {
	r.GET("/stock-locations", func(c *gin.Context) {
		locations, err := models.GetStockLocationAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, locations)
	})
	r.POST("/stock-locations", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewStockLocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		location, err := models.CreateStockLocation(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, location)
	})
	r.GET("/stock/balances/:locationId", func(c *gin.Context) {
		locationId, err := strconv.Atoi(c.Param("locationId"))
		if err != nil || locationId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
			return
		}
		entries, err := models.GetEntriesForLocation(c.Request.Context(), locationId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	r.GET("/stock/movements", func(c *gin.Context) {
		reference := c.Query("reference")
		if reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
			return
		}
		movements, err := models.GetMovementsByReference(c.Request.Context(), reference)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, movements)
	})

	// Manual corrections outside the request workflow. Positive qty credits
	// the location, negative debits it.
	r.POST("/stock/adjustments", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input stockAdjustmentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if input.Qty.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "qty must be non-zero"})
			return
		}
		ctx := c.Request.Context()
		var movement *models.StockMovement
		err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			if input.Qty.IsPositive() {
				movement, err = models.CreditStock(tx, input.LocationId, input.ProductId, input.Qty,
					models.MovementReasonManualAdjustment, input.Reference)
			} else {
				movement, err = models.DebitStock(tx, input.LocationId, input.ProductId, input.Qty.Neg(),
					models.MovementReasonManualAdjustment, input.Reference)
			}
			if err != nil {
				return err
			}
			models.LogActivity(ctx, tx, "stock_adjusted",
				"Manual adjustment "+input.Reference, "stock_movements", movement.ID)
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, movement)
	})

	// Direct moves between existing locations, e.g. rebalancing stock from
	// one vehicle to another. A short debit side rejects the whole transfer.
	r.POST("/stock/transfers", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input stockTransferInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		ctx := c.Request.Context()
		var movement *models.StockMovement
		err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			movement, err = models.TransferStock(tx, input.FromLocationId, input.ToLocationId,
				input.ProductId, input.Qty, models.MovementReasonManualAdjustment, input.Reference)
			if err != nil {
				return err
			}
			models.LogActivity(ctx, tx, "stock_transferred",
				"Transferred stock under "+input.Reference, "stock_movements", movement.ID)
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, movement)
	})
}

func registerEventRoutes(r *gin.Engine) {
	r.POST("/events", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewEvent
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		event, err := models.CreateEvent(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	})
	r.GET("/events/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		event, err := models.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	})
	r.PUT("/events/:id/status", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input struct {
			Status models.EventStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		event, err := models.UpdateEventStatus(c.Request.Context(), id, input.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	})
	r.GET("/events", func(c *gin.Context) {
		from, err := time.Parse("2006-01-02", c.DefaultQuery("from", time.Now().Format("2006-01-02")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		to, err := time.Parse("2006-01-02", c.DefaultQuery("to", from.AddDate(0, 0, 7).Format("2006-01-02")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		events, err := models.GetEventsByDateRange(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	})
	// Dry-run conflict check for a proposed window; nothing is booked.
	r.GET("/resources/:type/:id/availability", func(c *gin.Context) {
		resourceId, err := strconv.Atoi(c.Param("id"))
		if err != nil || resourceId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
			return
		}
		start, err := time.Parse(time.RFC3339, c.Query("start"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start is required as RFC3339"})
			return
		}
		end, err := time.Parse(time.RFC3339, c.Query("end"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end is required as RFC3339"})
			return
		}
		date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		conflicts, err := models.CheckAvailability(config.GetDB().WithContext(c.Request.Context()),
			models.ResourceType(c.Param("type")), resourceId, date, start, end)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"available": len(conflicts) == 0, "conflicts": conflicts})
	})
	r.GET("/resources/:type/:id/events", func(c *gin.Context) {
		resourceId, err := strconv.Atoi(c.Param("id"))
		if err != nil || resourceId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
			return
		}
		date, err := time.Parse("2006-01-02", c.Query("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required as YYYY-MM-DD"})
			return
		}
		events, err := models.GetEventsForResource(c.Request.Context(),
			models.ResourceType(c.Param("type")), resourceId, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	})
}

func registerStockRequestRoutes(r *gin.Engine) {
	r.POST("/stock-requests", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		var input models.NewStockRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		request, err := workflow.SubmitStockRequest(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, request)
	})
	r.GET("/stock-requests/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		request, err := models.GetStockRequest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	})
	r.GET("/stock-requests", func(c *gin.Context) {
		ctx := c.Request.Context()
		if number := c.Query("number"); number != "" {
			request, err := models.GetStockRequestByNumber(ctx, number)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, request)
			return
		}
		if status := c.Query("status"); status != "" {
			requests, err := models.GetStockRequestsByStatus(ctx, models.StockRequestStatus(status))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, requests)
			return
		}
		if requester := c.Query("requester_id"); requester != "" {
			requesterId, err := strconv.Atoi(requester)
			if err != nil || requesterId <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requester id"})
				return
			}
			requests, err := models.GetStockRequestsByRequester(ctx, requesterId)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, requests)
			return
		}
		requests, err := utils.FetchAllModels[models.StockRequest](ctx, "StockRequestDetails")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)
	})
	r.POST("/stock-requests/:id/assign", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		request, err := workflow.AssignStockRequest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	})
	r.POST("/stock-requests/:id/confirm", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input struct {
			UsageDescription string `json:"usage_description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		request, err := workflow.ConfirmStockRequest(c.Request.Context(), id, input.UsageDescription)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	})
	r.POST("/stock-requests/:id/cancel", func(c *gin.Context) {
		if !requireIdentity(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		request, err := workflow.CancelStockRequest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, request)
	})
	r.GET("/stock-requests/:id/acknowledgements", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		acks, err := models.GetAcknowledgementsForRequest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, acks)
	})
	r.GET("/acknowledgements", func(c *gin.Context) {
		obdNumber := c.Query("obd_number")
		if obdNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "obd_number is required"})
			return
		}
		ack, err := models.GetAcknowledgementByObdNumber(c.Request.Context(), obdNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ack)
	})
}

func registerDashboardRoutes(r *gin.Engine) {
	r.GET("/dashboard", func(c *gin.Context) {
		counts, err := models.GetDashboardCounts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	})
	r.GET("/history", func(c *gin.Context) {
		referenceType := c.Query("reference_type")
		referenceId, err := strconv.Atoi(c.Query("reference_id"))
		if referenceType == "" || err != nil || referenceId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference_type and reference_id are required"})
			return
		}
		entries, err := models.GetHistoryForReference(c.Request.Context(), referenceType, referenceId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	})
}
