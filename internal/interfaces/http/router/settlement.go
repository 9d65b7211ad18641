package router

import (
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/handler"
)

// SettlementHandlers groups the handlers served under /settlement
type SettlementHandlers struct {
	Batches            *handler.BatchHandler
	Distributions      *handler.DistributionHandler
	Cheques            *handler.ChequeHandler
	ElectronicPayments *handler.ElectronicPaymentHandler
	Advances           *handler.AdvanceHandler
}

// SettlementRoutes builds the /settlement route table
func SettlementRoutes(h SettlementHandlers) *DomainGroup {
	g := NewDomainGroup("settlement", "/settlement")

	batches := g.Group("batches", "/batches")
	batches.POST("", h.Batches.Create)
	batches.GET("", h.Batches.List)
	batches.GET("/:id", h.Batches.Get)
	batches.GET("/:id/guards", h.Batches.Guards)
	batches.GET("/:id/allocations", h.Batches.Allocations)
	batches.POST("/:id/approve", h.Batches.Approve)
	batches.POST("/:id/process", h.Batches.ProcessPayments)
	batches.POST("/:id/void", h.Batches.Void)
	batches.POST("/:id/rollback", h.Batches.Rollback)
	batches.DELETE("/:id", h.Batches.Delete)

	distributions := g.Group("distributions", "/distributions")
	distributions.POST("/preview", h.Distributions.Preview)
	distributions.POST("", h.Distributions.Create)
	distributions.GET("", h.Distributions.List)
	distributions.GET("/:id", h.Distributions.Get)
	distributions.POST("/:id/resume", h.Distributions.Resume)
	distributions.POST("/:id/void", h.Distributions.Void)
	distributions.GET("/:id/electronic-payments", h.ElectronicPayments.ListByDistribution)

	cheques := g.Group("cheques", "/cheques")
	cheques.GET("", h.Cheques.List)
	cheques.GET("/:id", h.Cheques.Get)
	cheques.GET("/:id/render", h.Cheques.Render)
	cheques.POST("/:id/print", h.Cheques.MarkPrinted)
	cheques.POST("/:id/deliver", h.Cheques.MarkDelivered)
	cheques.POST("/:id/stop", h.Cheques.Stop)
	cheques.POST("/:id/void", h.Cheques.Void)
	cheques.POST("/:id/reissue", h.Cheques.Reissue)

	payments := g.Group("electronic-payments", "/electronic-payments")
	payments.GET("/pending", h.ElectronicPayments.ListPending)
	payments.GET("/:id", h.ElectronicPayments.Get)
	payments.POST("/bank-files", h.ElectronicPayments.ConfirmBankFile)
	payments.POST("/:id/fail", h.ElectronicPayments.MarkFailed)

	advances := g.Group("advances", "/advances")
	advances.POST("", h.Advances.Issue)
	advances.GET("", h.Advances.ListOutstanding)
	advances.GET("/:id", h.Advances.Get)
	advances.GET("/:id/deductions", h.Advances.Deductions)
	advances.POST("/:id/void", h.Advances.Void)

	return g
}
