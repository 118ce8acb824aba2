package model

// Role 用户角色
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleLead        Role = "lead"
	RoleFinance     Role = "finance"
	RoleContributor Role = "contributor"
	RoleReadOnly    Role = "read-only"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLead, RoleFinance, RoleContributor, RoleReadOnly:
		return true
	}
	return false
}

// CanDecide 判断角色是否具备审批资格(不含项目指定审批人)
func (r Role) CanDecide() bool {
	return r == RoleAdmin || r == RoleLead || r == RoleFinance
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectPlanned ProjectStatus = "planned"
	ProjectActive  ProjectStatus = "active"
	ProjectClosed  ProjectStatus = "closed"
)

// Valid 判断项目状态是否合法
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectActive, ProjectClosed:
		return true
	}
	return false
}

// EntrySource 工时来源
type EntrySource string

const (
	SourceManual EntrySource = "manual"
	SourceTimer  EntrySource = "timer"
	SourceImport EntrySource = "import"
)

// Valid 判断来源是否合法
func (s EntrySource) Valid() bool {
	switch s {
	case SourceManual, SourceTimer, SourceImport:
		return true
	}
	return false
}

// Decision 审批决定
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid 判断审批决定是否合法
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}
