package subscription

import (
	"errors"
	"net/http"

	"bharatprint/config"
	"bharatprint/controller"
	"bharatprint/middleware"
	"bharatprint/model"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	currency = "INR"

	// Checkout opens against this key when no gateway is configured.
	testModeKeyID = "rzp_test_placeholder"
)

func SubscriptionController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	routes := router.Group("/subscriptions")
	{
		routes.GET("/plans", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "plans": svc.Plans.Plans})
		})

		authed := routes.Group("", middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret))
		authed.POST("/start-trial", func(c *gin.Context) {
			StartTrial(c, db, svc)
		})
		authed.POST("/create-order", func(c *gin.Context) {
			CreateOrder(c, db, svc)
		})
		authed.POST("/verify-payment", func(c *gin.Context) {
			VerifyPayment(c, db, svc)
		})
	}
}

func StartTrial(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	if err := svc.StartTrial(db, user); err != nil {
		if errors.Is(err, services.ErrAlreadySubscribed) || errors.Is(err, services.ErrTrialUsed) {
			controller.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		controller.Internal(c, svc.Logger, "Failed to start trial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Trial started",
		"trialEndsAt": user.TrialEndsAt,
	})
}

func CreateOrder(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	plan, ok := svc.Plans.Get(c.PostForm("plan_id"))
	if !ok || plan.ID == config.PlanFree {
		controller.Fail(c, http.StatusBadRequest, "Invalid plan")
		return
	}

	order := model.PaymentOrder{
		UserID:   user.ID,
		PlanID:   plan.ID,
		Amount:   plan.PricePaise(),
		Currency: currency,
		Status:   model.OrderCreated,
	}
	keyID := testModeKeyID
	if svc.Payments == nil {
		id, err := services.TestOrderID()
		if err != nil {
			controller.Internal(c, svc.Logger, "Failed to create order", err)
			return
		}
		order.OrderID = id
		order.TestMode = true
	} else {
		receipt := "bp_sub_" + user.ID
		if len(user.ID) > 8 {
			receipt = "bp_sub_" + user.ID[:8]
		}
		created, err := svc.Payments.CreateOrder(c.Request.Context(), order.Amount, currency, receipt, map[string]string{
			"user_id": user.ID,
			"plan_id": plan.ID,
			"phone":   user.PhoneNumber,
		})
		if err != nil {
			controller.Internal(c, svc.Logger, "Failed to create order", err)
			return
		}
		order.OrderID = created.ID
		order.Amount = created.Amount
		order.Currency = created.Currency
		keyID = svc.Payments.KeyID()
	}

	if err := db.Create(&order).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to create order", err)
		return
	}
	svc.Logger.Info("Payment order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", user.ID),
		zap.Bool("test_mode", order.TestMode))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"orderId":       order.OrderID,
			"amount":        order.Amount,
			"currency":      order.Currency,
			"razorpayKeyId": keyID,
			"planDetails": gin.H{
				"name":         plan.Name,
				"monthlyLimit": plan.MonthlyLimit,
				"price":        plan.PricePerMonth,
			},
		},
		"testMode": order.TestMode,
	})
}

func VerifyPayment(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)
	orderID := c.PostForm("razorpay_order_id")
	paymentID := c.PostForm("razorpay_payment_id")
	signature := c.PostForm("razorpay_signature")
	if orderID == "" {
		controller.Fail(c, http.StatusBadRequest, "Order ID is required")
		return
	}

	var order model.PaymentOrder
	if err := db.Where("order_id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.Fail(c, http.StatusNotFound, services.ErrOrderNotFound.Error())
			return
		}
		controller.Internal(c, svc.Logger, "Failed to verify payment", err)
		return
	}

	if !order.TestMode {
		if svc.Payments == nil || !svc.Payments.VerifySignature(orderID, paymentID, signature) {
			svc.Logger.Warn("payment signature rejected", zap.String("order_id", orderID), zap.String("user_id", user.ID))
			controller.Fail(c, http.StatusBadRequest, "Payment verification failed")
			return
		}
	} else if paymentID == "" {
		paymentID = "pay_test_" + orderID
	}

	if err := svc.ActivateSubscription(db, user.ID, orderID, paymentID); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			controller.Fail(c, http.StatusNotFound, err.Error())
			return
		}
		controller.Internal(c, svc.Logger, "Failed to activate subscription", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "Subscription activated",
		"subscriptionStatus": model.SubscriptionUnlimited,
	})
}
