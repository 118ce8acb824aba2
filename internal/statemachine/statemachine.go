// Package statemachine 定义工时条目的状态及合法转换
//
// 状态图:
//
//	draft ──submit──▶ submitted ──approve──▶ approved
//	  ▲                   │
//	  └────resubmit── rejected ◀──reject──┘
//
// 任何不在图中的转换(例如 draft 直接到 approved)都会被拒绝。
package statemachine

import "fmt"

// State 工时条目状态
type State string

const (
	Draft     State = "draft"
	Submitted State = "submitted"
	Approved  State = "approved"
	Rejected  State = "rejected"
)

// States 全部合法状态
var States = []State{Draft, Submitted, Approved, Rejected}

// Action 触发状态转换的操作
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionResubmit Action = "resubmit"
)

// transitions 每个状态允许的操作及目标状态
var transitions = map[State]map[Action]State{
	Draft:     {ActionSubmit: Submitted},
	Submitted: {ActionApprove: Approved, ActionReject: Rejected},
	Rejected:  {ActionResubmit: Draft},
	Approved:  {},
}

// Valid 判断状态是否合法
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal 已通过的条目不再允许任何变更
func (s State) IsTerminal() bool {
	return s == Approved
}

// Editable 只有草稿允许修改字段
func (s State) Editable() bool {
	return s == Draft
}

// TransitionError 非法状态转换
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an entry in state %q", e.Action, e.From)
}

// Next 返回 from 状态执行 action 后的目标状态
func Next(from State, action Action) (State, error) {
	actions, ok := transitions[from]
	if !ok {
		return "", fmt.Errorf("unknown state %q", from)
	}
	to, ok := actions[action]
	if !ok {
		return "", &TransitionError{From: from, Action: action}
	}
	return to, nil
}

// CanTransition 判断 from 是否可以直接转换到 to
func CanTransition(from, to State) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}
