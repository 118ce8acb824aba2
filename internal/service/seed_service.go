package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/default.yaml
var defaultSeed []byte

// SeedData 初始化数据
type SeedData struct {
	Users   []SeedUser   `yaml:"users"`
	Clients []SeedClient `yaml:"clients"`
}

// SeedUser 初始化用户
type SeedUser struct {
	Name  string     `yaml:"name"`
	Email string     `yaml:"email"`
	Role  model.Role `yaml:"role"`
}

// SeedClient 初始化客户及其项目
type SeedClient struct {
	Name     string        `yaml:"name"`
	Currency string        `yaml:"currency"`
	Projects []SeedProject `yaml:"projects"`
}

// SeedProject 初始化项目
type SeedProject struct {
	Code        string              `yaml:"code"`
	Name        string              `yaml:"name"`
	Status      model.ProjectStatus `yaml:"status"`
	Approver    string              `yaml:"approver"` // 审批人邮箱
	BudgetHours string              `yaml:"budget_hours"`
	Tasks       []SeedTask          `yaml:"tasks"`
	Members     []string            `yaml:"members"` // 成员邮箱
}

// SeedTask 初始化任务
type SeedTask struct {
	Name     string `yaml:"name"`
	Billable bool   `yaml:"billable"`
}

// SeedResult 初始化结果
type SeedResult struct {
	UsersCreated    int
	ClientsCreated  int
	ProjectsCreated int
	TasksCreated    int
}

// SeedService 初始化数据服务
type SeedService interface {
	SeedDefault(ctx context.Context) (*SeedResult, error)
	SeedFile(ctx context.Context, path string) (*SeedResult, error)
	Seed(ctx context.Context, data *SeedData) (*SeedResult, error)
}

type seedService struct {
	directory DirectoryService
	users     repository.UserRepository
	clients   repository.ClientRepository
	projects  repository.ProjectRepository
}

// NewSeedService 创建初始化数据服务
func NewSeedService(db *gorm.DB, directory DirectoryService) SeedService {
	return &seedService{
		directory: directory,
		users:     repository.NewUserRepository(db),
		clients:   repository.NewClientRepository(db),
		projects:  repository.NewProjectRepository(db),
	}
}

// ParseSeed 解析 YAML 初始化数据,拒绝未知字段
func ParseSeed(data []byte) (*SeedData, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var seed SeedData
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &seed, nil
}

// SeedDefault 写入内置的演示数据
func (s *seedService) SeedDefault(ctx context.Context) (*SeedResult, error) {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, seed)
}

// SeedFile 从 YAML 文件写入初始化数据
func (s *seedService) SeedFile(ctx context.Context, path string) (*SeedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, seed)
}

// Seed 按用户、客户、项目、任务、成员的顺序写入数据
//
// 已存在的用户(按邮箱)、客户(按名称)和项目(按客户和编码)会被跳过,重复执行不会产生重复数据。
func (s *seedService) Seed(ctx context.Context, data *SeedData) (*SeedResult, error) {
	result := &SeedResult{}
	userIDs := make(map[string]int64, len(data.Users))

	// 1. 用户
	for _, u := range data.Users {
		existing, err := s.users.FindByEmail(ctx, u.Email)
		if err == nil {
			userIDs[existing.Email] = existing.ID
			continue
		}
		user, err := s.directory.CreateUser(ctx, &UserInput{Name: u.Name, Email: u.Email, Role: u.Role})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		userIDs[user.Email] = user.ID
		result.UsersCreated++
	}

	lookupUser := func(email string) (int64, error) {
		if id, ok := userIDs[email]; ok {
			return id, nil
		}
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return 0, fmt.Errorf("seed references unknown user %s: %w", email, err)
		}
		userIDs[email] = user.ID
		return user.ID, nil
	}

	existingClients, err := s.clients.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// 2. 客户与项目
	for _, c := range data.Clients {
		var client *model.ClientModel
		for _, ec := range existingClients {
			if ec.Name == c.Name {
				client = ec
				break
			}
		}
		if client == nil {
			client, err = s.directory.CreateClient(ctx, &ClientInput{Name: c.Name, Currency: c.Currency})
			if err != nil {
				return nil, fmt.Errorf("seed client %s: %w", c.Name, err)
			}
			result.ClientsCreated++
		}

		projects, err := s.projects.FindAll(ctx, &repository.ProjectFilter{ClientID: &client.ID})
		if err != nil {
			return nil, err
		}
		for _, p := range c.Projects {
			if containsProject(projects, p.Code) {
				continue
			}
			if err := s.seedProject(ctx, client.ID, p, lookupUser, result); err != nil {
				return nil, err
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"users":    result.UsersCreated,
		"clients":  result.ClientsCreated,
		"projects": result.ProjectsCreated,
		"tasks":    result.TasksCreated,
	}).Info("seed data applied")
	return result, nil
}

func (s *seedService) seedProject(ctx context.Context, clientID int64, p SeedProject, lookupUser func(string) (int64, error), result *SeedResult) error {
	in := &ProjectInput{ClientID: clientID, Code: p.Code, Name: p.Name, Status: p.Status}
	if p.Approver != "" {
		approverID, err := lookupUser(p.Approver)
		if err != nil {
			return err
		}
		in.ApproverUserID = &approverID
	}
	if p.BudgetHours != "" {
		budget, err := decimal.NewFromString(p.BudgetHours)
		if err != nil {
			return fmt.Errorf("seed project %s: invalid budget_hours: %w", p.Code, err)
		}
		in.BudgetHours = &budget
	}

	project, err := s.directory.CreateProject(ctx, in)
	if err != nil {
		return fmt.Errorf("seed project %s: %w", p.Code, err)
	}
	result.ProjectsCreated++

	for _, t := range p.Tasks {
		billable := t.Billable
		if _, err := s.directory.CreateTask(ctx, project.ID, &TaskInput{Name: t.Name, BillableDefault: &billable}); err != nil {
			return fmt.Errorf("seed task %s/%s: %w", p.Code, t.Name, err)
		}
		result.TasksCreated++
	}
	for _, email := range p.Members {
		userID, err := lookupUser(email)
		if err != nil {
			return err
		}
		if _, err := s.directory.Assign(ctx, project.ID, userID); err != nil {
			return fmt.Errorf("seed member %s/%s: %w", p.Code, email, err)
		}
	}
	return nil
}

func containsProject(projects []*model.ProjectModel, code string) bool {
	for _, p := range projects {
		if p.Code == code {
			return true
		}
	}
	return false
}
