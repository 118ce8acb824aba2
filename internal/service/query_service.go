package service

import (
	"context"
	"fmt"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/database"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/mautops/timesheet-gin/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// entrySortFields 允许排序的字段
var entrySortFields = []string{"work_date", "created_at", "updated_at", "hours", "id"}

// QueryService 查询服务接口
type QueryService interface {
	ListEntries(ctx context.Context, viewerID int64, filter *ListEntriesFilter) ([]*model.TimeEntryModel, int64, error)
	GetEntry(ctx context.Context, viewerID, entryID int64) (*model.TimeEntryModel, error)
	GetApprovals(ctx context.Context, viewerID, entryID int64) ([]*model.ApprovalModel, error)
	GetHistory(ctx context.Context, viewerID, entryID int64) ([]*model.StateHistoryModel, error)
	WeekView(ctx context.Context, viewerID, userID int64, year, week int) (*WeekView, error)
}

// ListEntriesFilter 工时条目列表查询过滤器
type ListEntriesFilter struct {
	UserID    *int64
	ProjectID *int64
	State     *string
	BatchID   *string
	From      *string // YYYY-MM-DD
	To        *string // YYYY-MM-DD
	Page      int
	PageSize  int
	SortBy    string
	Order     string
}

// WeekDay 一天的工时
type WeekDay struct {
	Date    string                  `json:"date"`
	Hours   string                  `json:"hours"`
	Entries []*model.TimeEntryModel `json:"entries"`
}

// WeekView 某用户一个 ISO 周的工时视图
type WeekView struct {
	UserID int64      `json:"user_id"`
	Year   int        `json:"year"`
	Week   int        `json:"week"`
	Days   []*WeekDay `json:"days"`
	Total  string     `json:"total_hours"`
	Status string     `json:"status"` // approved, submitted, draft
}

// queryService 查询服务实现
type queryService struct {
	directory DirectoryLookup
	entries   repository.TimeEntryRepository
	approvals repository.ApprovalRepository
	history   repository.StateHistoryRepository
}

// NewQueryService 创建查询服务
func NewQueryService(db *gorm.DB, directory DirectoryLookup) QueryService {
	return &queryService{
		directory: directory,
		entries:   repository.NewTimeEntryRepository(db),
		approvals: repository.NewApprovalRepository(db),
		history:   repository.NewStateHistoryRepository(db),
	}
}

// canViewOthers 审批角色与只读角色可以查看他人的工时
func (s *queryService) canViewOthers(ctx context.Context, viewerID int64) (bool, error) {
	viewer, err := s.directory.GetUser(ctx, viewerID)
	if err != nil {
		return false, err
	}
	return viewer.Role.CanDecide() || viewer.Role == model.RoleReadOnly, nil
}

// ListEntries 分页列出工时条目
//
// 贡献者看到自己的条目以及自己担任指定审批人的项目的条目,
// 显式传入其他 user_id 时返回 Forbidden。
func (s *queryService) ListEntries(ctx context.Context, viewerID int64, filter *ListEntriesFilter) ([]*model.TimeEntryModel, int64, error) {
	if filter == nil {
		filter = &ListEntriesFilter{}
	}

	// 1. 校验排序参数
	if filter.SortBy != "" {
		if err := utils.ValidateSortField(filter.SortBy, entrySortFields); err != nil {
			return nil, 0, apperror.Validation("sort_by", "%s", err.Error())
		}
	}
	if filter.Order != "" {
		if err := utils.ValidateSortOrder(filter.Order); err != nil {
			return nil, 0, apperror.Validation("order", "%s", err.Error())
		}
	}

	repoFilter := &repository.TimeEntryFilter{
		UserID:    filter.UserID,
		ProjectID: filter.ProjectID,
		BatchID:   filter.BatchID,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		SortBy:    filter.SortBy,
		Order:     filter.Order,
	}

	// 2. 校验过滤参数
	if filter.State != nil {
		state := statemachine.State(*filter.State)
		if !state.Valid() {
			return nil, 0, apperror.Validation("state", "unknown state %q", *filter.State)
		}
		repoFilter.State = &state
	}
	if filter.From != nil {
		from, err := ParseDate("from", *filter.From)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.From = &from
	}
	if filter.To != nil {
		to, err := ParseDate("to", *filter.To)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.To = &to
	}
	if repoFilter.From != nil && repoFilter.To != nil && repoFilter.To.Before(*repoFilter.From) {
		return nil, 0, apperror.Validation("to", "must not be before from")
	}

	// 3. 可见范围
	others, err := s.canViewOthers(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	if !others {
		if filter.UserID != nil && *filter.UserID != viewerID {
			return nil, 0, apperror.Forbidden("user %d may only list their own entries", viewerID)
		}
		if filter.UserID != nil {
			repoFilter.UserID = &viewerID
		} else {
			repoFilter.VisibleTo = &viewerID
		}
	}

	return s.entries.FindByFilter(ctx, repoFilter)
}

// loadVisible 加载条目并校验查看权限
func (s *queryService) loadVisible(ctx context.Context, viewerID, entryID int64) (*model.TimeEntryModel, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		return nil, notFoundEntry(err, entryID)
	}
	if entry.UserID == viewerID {
		return entry, nil
	}
	others, err := s.canViewOthers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !others {
		approver, err := s.directory.ProjectApprover(ctx, entry.ProjectID)
		if err != nil {
			return nil, err
		}
		if approver == nil || *approver != viewerID {
			return nil, apperror.Forbidden("user %d may not view this entry", viewerID).WithEntry(entryID)
		}
	}
	return entry, nil
}

// GetEntry 获取调用方可见的工时条目
func (s *queryService) GetEntry(ctx context.Context, viewerID, entryID int64) (*model.TimeEntryModel, error) {
	return s.loadVisible(ctx, viewerID, entryID)
}

// GetApprovals 获取条目的审批记录,按决定时间升序
func (s *queryService) GetApprovals(ctx context.Context, viewerID, entryID int64) ([]*model.ApprovalModel, error) {
	if _, err := s.loadVisible(ctx, viewerID, entryID); err != nil {
		return nil, err
	}
	approvals, err := s.approvals.FindByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approvals: %w", err)
	}
	return approvals, nil
}

// GetHistory 获取条目的状态历史
func (s *queryService) GetHistory(ctx context.Context, viewerID, entryID int64) ([]*model.StateHistoryModel, error) {
	if _, err := s.loadVisible(ctx, viewerID, entryID); err != nil {
		return nil, err
	}
	history, err := s.history.FindByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load state history: %w", err)
	}
	return history, nil
}

// WeekView 按天汇总某用户一个 ISO 周的工时
func (s *queryService) WeekView(ctx context.Context, viewerID, userID int64, year, week int) (*WeekView, error) {
	days, err := ISOWeekDays(year, week)
	if err != nil {
		return nil, err
	}
	if userID != viewerID {
		others, err := s.canViewOthers(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if !others {
			return nil, apperror.Forbidden("user %d may only view their own week", viewerID)
		}
	}
	if _, err := s.directory.GetUser(ctx, userID); err != nil {
		return nil, withField(err, "user_id")
	}

	entries, err := s.entries.FindByUserInRange(ctx, userID, days[0], days[6], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load week entries: %w", err)
	}

	byDay := make(map[string][]*model.TimeEntryModel, 7)
	for _, e := range entries {
		key := DateOnly(e.WorkDate).Format(DateLayout)
		byDay[key] = append(byDay[key], e)
	}

	view := &WeekView{
		UserID: userID,
		Year:   year,
		Week:   week,
		Days:   make([]*WeekDay, 0, 7),
		Total:  sumHours(entries).StringFixed(2),
		Status: weekStatus(entries),
	}
	for _, d := range days {
		key := d.Format(DateLayout)
		dayEntries := byDay[key]
		if dayEntries == nil {
			dayEntries = []*model.TimeEntryModel{}
		}
		view.Days = append(view.Days, &WeekDay{
			Date:    key,
			Hours:   sumHours(dayEntries).StringFixed(2),
			Entries: dayEntries,
		})
	}
	return view, nil
}

// weekStatus 全部已批准为 approved,存在已提交为 submitted,其余(含空周)为 draft
func weekStatus(entries []*model.TimeEntryModel) string {
	if len(entries) == 0 {
		return string(statemachine.Draft)
	}
	allApproved := true
	for _, e := range entries {
		if e.State == statemachine.Submitted {
			return string(statemachine.Submitted)
		}
		if e.State != statemachine.Approved {
			allApproved = false
		}
	}
	if allApproved {
		return string(statemachine.Approved)
	}
	return string(statemachine.Draft)
}

func sumHours(entries []*model.TimeEntryModel) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}
	return total
}

func notFoundEntry(err error, entryID int64) error {
	if database.IsNotFound(err) {
		return apperror.EntryNotFound(entryID)
	}
	return fmt.Errorf("failed to load time entry: %w", err)
}
