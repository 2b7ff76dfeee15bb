package club

import "fmt"

// Action names a capability checked against a role. Views derive their
// breadth (own rows vs. all rows) from the same table instead of branching
// on the role ad hoc.
type Action string

const (
	ActionCreateCustomer   Action = "create_customer"
	ActionRecharge         Action = "recharge"
	ActionViewAllCustomers Action = "view_all_customers"
	ActionCreateOrder      Action = "create_order"
	ActionApproveOrder     Action = "approve_order"
	ActionRejectOrder      Action = "reject_order"
	ActionMarkOrderPaid    Action = "mark_order_paid"
	ActionCancelOrder      Action = "cancel_order"
)

var rolePermissions = map[Role]map[Action]bool{
	RoleStaff: {
		ActionCreateCustomer: true,
		ActionRecharge:       true,
		ActionCreateOrder:    true,
	},
	RoleLeader: {
		ActionCreateCustomer:   true,
		ActionRecharge:         true,
		ActionViewAllCustomers: true,
		ActionCreateOrder:      true,
		ActionApproveOrder:     true,
		ActionRejectOrder:      true,
		ActionMarkOrderPaid:    true,
		ActionCancelOrder:      true,
	},
}

// CanPerform reports whether the role is allowed to perform the action.
func CanPerform(role Role, action Action) bool {
	return rolePermissions[role][action]
}

func requirePermission(actor Actor, action Action) error {
	if err := actor.validate(); err != nil {
		return err
	}
	if !CanPerform(actor.Role, action) {
		return fmt.Errorf("%w: role %s may not %s", ErrPermissionDenied, actor.Role, action)
	}
	return nil
}

func actionForOrderAction(action OrderAction) (Action, error) {
	switch action {
	case OrderActionApprove:
		return ActionApproveOrder, nil
	case OrderActionReject:
		return ActionRejectOrder, nil
	case OrderActionMarkPaid:
		return ActionMarkOrderPaid, nil
	case OrderActionCancel:
		return ActionCancelOrder, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderAction, action)
}

func operationForOrderAction(action OrderAction) string {
	switch action {
	case OrderActionApprove:
		return operationApproveOrder
	case OrderActionReject:
		return operationRejectOrder
	case OrderActionMarkPaid:
		return operationMarkOrderPaid
	case OrderActionCancel:
		return operationCancelOrder
	}
	return action.String()
}
