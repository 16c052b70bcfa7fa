package api

import (
	"net/http"

	"github.com/vuthevietgps/chatbot2-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customers *store.CustomerStore
}

func NewCustomerHandler(customers *store.CustomerStore) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	pageID := c.Query("page_id")
	if pageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_id is required"})
		return
	}
	customers, err := h.customers.ListByPage(c.Request.Context(), pageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.ByExternalID(c.Request.Context(), c.Param("psid"), c.Query("page_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}
