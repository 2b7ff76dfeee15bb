package club

import (
	"context"
	"errors"
	"testing"
)

func TestCanPerformTable(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleStaff, ActionCreateCustomer, true},
		{RoleStaff, ActionRecharge, true},
		{RoleStaff, ActionCreateOrder, true},
		{RoleStaff, ActionViewAllCustomers, false},
		{RoleStaff, ActionApproveOrder, false},
		{RoleStaff, ActionRejectOrder, false},
		{RoleStaff, ActionMarkOrderPaid, false},
		{RoleStaff, ActionCancelOrder, false},
		{RoleLeader, ActionCreateCustomer, true},
		{RoleLeader, ActionViewAllCustomers, true},
		{RoleLeader, ActionApproveOrder, true},
		{RoleLeader, ActionRejectOrder, true},
		{RoleLeader, ActionMarkOrderPaid, true},
		{RoleLeader, ActionCancelOrder, true},
		{Role("unknown"), ActionCreateOrder, false},
	}
	for _, testCase := range testCases {
		if got := CanPerform(testCase.role, testCase.action); got != testCase.want {
			test.Fatalf("%s/%s: expected %v, got %v", testCase.role, testCase.action, testCase.want, got)
		}
	}
}

func TestInvalidActorRejected(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.Customers(context.Background(), Actor{})
	if !errors.Is(err, ErrInvalidStaffID) {
		test.Fatalf(errorMismatchFmt, ErrInvalidStaffID, err)
	}

	badRole := Actor{StaffID: mustStaffID(test, "S001"), Role: Role("intern")}
	_, err = service.Orders(context.Background(), badRole)
	if !errors.Is(err, ErrInvalidRole) {
		test.Fatalf(errorMismatchFmt, ErrInvalidRole, err)
	}
}
