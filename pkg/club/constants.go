package club

const (
	operationCreateCustomer = "customer.create"
	operationRecharge       = "customer.recharge"
	operationCreateOrder    = "order.create"
	operationApproveOrder   = "order.approve"
	operationRejectOrder    = "order.reject"
	operationMarkOrderPaid  = "order.pay"
	operationCancelOrder    = "order.cancel"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
