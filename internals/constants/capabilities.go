package constants

import "sort"

// Capability is an action guarded by role.
type Capability string

const (
	CapTenantManage      Capability = "tenant.manage"
	CapUserManage        Capability = "user.manage"
	CapStudentWrite      Capability = "student.write"
	CapGuardianWrite     Capability = "guardian.write"
	CapEnrollmentWrite   Capability = "enrollment.write"
	CapDebtOverride      Capability = "enrollment.debt_override"
	CapCourseWrite       Capability = "course.write"
	CapScheduleWrite     Capability = "schedule.write"
	CapTariffWrite       Capability = "tariff.write"
	CapPaymentWrite      Capability = "payment.write"
	CapPaymentCheckout   Capability = "payment.checkout"
	CapEvaluationWrite   Capability = "evaluation.write"
	CapApprovalSubmit    Capability = "approval.submit"
	CapApprovalReview    Capability = "approval.review"
	CapGradeWrite        Capability = "grade.write"
	CapAttendanceWrite   Capability = "attendance.write"
	CapAnnotationWrite   Capability = "annotation.write"
	CapAnnotationSign    Capability = "annotation.sign"
	CapEventWrite        Capability = "event.write"
	CapMessageSend       Capability = "message.send"
	CapReportRead        Capability = "report.read"
	CapPayrollManage     Capability = "payroll.manage"
	CapAuditRead         Capability = "audit.read"
	CapFinancialSync     Capability = "finance.sync"
	CapPaymentPromiseSet Capability = "payment_promise.update"
)

type capSet map[Capability]struct{}

func caps(list ...Capability) capSet {
	out := make(capSet, len(list))
	for _, c := range list {
		out[c] = struct{}{}
	}
	return out
}

var staffCommon = []Capability{
	CapStudentWrite, CapGuardianWrite, CapEnrollmentWrite, CapCourseWrite,
	CapEventWrite, CapMessageSend, CapReportRead, CapGradeWrite,
	CapAttendanceWrite, CapAnnotationWrite, CapAnnotationSign, CapFinancialSync,
}

// capabilityTable role → allowed actions. Evaluated once per request by the guard middleware.
var capabilityTable = map[Role]capSet{
	RoleAdmin: caps(append(staffCommon,
		CapTenantManage, CapUserManage, CapScheduleWrite, CapTariffWrite, CapPaymentWrite,
		CapEvaluationWrite, CapApprovalReview, CapPayrollManage, CapAuditRead, CapPaymentPromiseSet,
	)...),
	RoleSostenedor: caps(append(staffCommon,
		CapUserManage, CapTariffWrite, CapPaymentWrite, CapDebtOverride,
		CapPayrollManage, CapAuditRead, CapPaymentPromiseSet,
	)...),
	RoleDirector: caps(append(staffCommon,
		CapUserManage, CapScheduleWrite, CapEvaluationWrite, CapApprovalReview,
	)...),
	RoleUTP: caps(append(staffCommon,
		CapScheduleWrite, CapEvaluationWrite, CapApprovalReview,
	)...),
	RoleTeacher: caps(
		CapEvaluationWrite, CapApprovalSubmit, CapGradeWrite, CapAttendanceWrite,
		CapAnnotationWrite, CapMessageSend,
	),
	RoleStudent: caps(CapMessageSend),
	RoleApoderado: caps(
		CapMessageSend, CapAnnotationSign, CapPaymentCheckout,
	),
}

// Can reports whether role holds capability.
func Can(role Role, c Capability) bool {
	set, ok := capabilityTable[role]
	if !ok {
		return false
	}
	_, ok = set[c]
	return ok
}

// RolesWith lists roles holding c, in AllRoles order.
func RolesWith(c Capability) []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if Can(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// CapabilitiesOf lists the capabilities of role, sorted.
func CapabilitiesOf(role Role) []Capability {
	set := capabilityTable[role]
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
