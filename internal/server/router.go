package server

import (
	auction "bookbid/internal/auctionEngine"
	escrow "bookbid/internal/escrowEngine"
	auctionhandler "bookbid/services/auction/handler"
	escrowhandler "bookbid/services/escrow/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionEngine *auction.Engine, escrowEngine *escrow.Engine) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(cors.Default())

	auctionHandler := auctionhandler.NewAuctionHandler(auctionEngine)
	escrowHandler := escrowhandler.NewEscrowHandler(escrowEngine)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionStateHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.ListBidsHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
	}

	escrows := router.Group("/escrows")
	{
		escrows.GET("/:escrow_id", escrowHandler.GetEscrowHandler)
		escrows.POST("/:escrow_id/capture", escrowHandler.CaptureCallbackHandler)
		escrows.POST("/:escrow_id/confirm", escrowHandler.ConfirmReceiptHandler)
		escrows.POST("/:escrow_id/dispute", escrowHandler.RaiseDisputeHandler)
		escrows.POST("/:escrow_id/resolve", escrowHandler.ResolveDisputeHandler)
	}

	return router
}
