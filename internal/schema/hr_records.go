package schema

// HR 记录库：员工、薪酬、绩效、候选人、考勤、培训。
// 时间字段统一使用 Unix 毫秒时间戳，查询窗口为 [start, end)。

// 员工状态
const (
	EmployeeStatusActive     = "active"
	EmployeeStatusTerminated = "terminated" // 被动离职
	EmployeeStatusResigned   = "resigned"   // 主动离职
)

// 薪酬发放状态
const (
	PayrollStatusPaid      = "paid"
	PayrollStatusPending   = "pending"
	PayrollStatusCancelled = "cancelled"
)

// 候选人状态
const (
	CandidateStatusApplied       = "applied"
	CandidateStatusScreening     = "screening"
	CandidateStatusInterview     = "interview"
	CandidateStatusOffered       = "offered"
	CandidateStatusHired         = "hired"
	CandidateStatusOfferDeclined = "offer_declined"
	CandidateStatusRejected      = "rejected"
)

// 考勤状态
const (
	AttendanceStatusNormal     = "normal"
	AttendanceStatusLate       = "late"
	AttendanceStatusEarlyLeave = "early_leave"
	AttendanceStatusAbsent     = "absent"
	AttendanceStatusLeave      = "leave"
)

// 培训状态
const (
	TrainingStatusCompleted  = "completed"
	TrainingStatusInProgress = "in_progress"
	TrainingStatusNotStarted = "not_started"
)

// Company 企业档案（用于定位所属基准细分）
type Company struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"size:255" json:"name"`
	Industry    string `gorm:"size:50;index" json:"industry"`
	CompanySize string `gorm:"size:20" json:"company_size"`
	Region      string `gorm:"size:20" json:"region"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}

// Employee 员工
// 数据量级：千到十万级/企业
type Employee struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID    string `gorm:"size:64;index;not null" json:"company_id"`
	Name         string `gorm:"size:100" json:"name"`
	Level        string `gorm:"size:20;index" json:"level"`           // junior/middle/senior/expert/manager
	Status       string `gorm:"size:20;index;not null" json:"status"` // active/terminated/resigned
	CreatedAt    int64  `gorm:"autoCreateTime:milli;index" json:"created_at"`
	TerminatedAt int64  `gorm:"index;default:0" json:"terminated_at"` // 0 表示在职
}

func (Employee) TableName() string {
	return "employees"
}

// PayrollRecord 薪酬发放记录
type PayrollRecord struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID  string  `gorm:"size:64;index;not null" json:"company_id"`
	EmployeeID int64   `gorm:"index" json:"employee_id"`
	PayDate    int64   `gorm:"index" json:"pay_date"`
	GrossPay   float64 `gorm:"not null" json:"gross_pay"` // 应发工资（元）
	Status     string  `gorm:"size:20;index" json:"status"`
}

func (PayrollRecord) TableName() string {
	return "payroll_records"
}

// PerformanceRecord 绩效考核记录
type PerformanceRecord struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID  string  `gorm:"size:64;index;not null" json:"company_id"`
	EmployeeID int64   `gorm:"index" json:"employee_id"`
	FinalScore float64 `gorm:"not null" json:"final_score"` // 0-100
	ReviewedAt int64   `gorm:"index" json:"reviewed_at"`
}

func (PerformanceRecord) TableName() string {
	return "performance_records"
}

// Candidate 招聘候选人
type Candidate struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID string `gorm:"size:64;index;not null" json:"company_id"`
	Name      string `gorm:"size:100" json:"name"`
	Position  string `gorm:"size:100" json:"position"`
	Status    string `gorm:"size:20;index" json:"status"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli;index" json:"updated_at"` // 终态（入职/拒绝）时间
}

func (Candidate) TableName() string {
	return "candidates"
}

// AttendanceRecord 考勤记录（每人每天一条）
type AttendanceRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID   string `gorm:"size:64;index;not null" json:"company_id"`
	EmployeeID  int64  `gorm:"index" json:"employee_id"`
	Date        int64  `gorm:"index" json:"date"`
	Status      string `gorm:"size:20" json:"status"`
	WorkMinutes int    `gorm:"default:0" json:"work_minutes"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// TrainingRecord 培训记录
type TrainingRecord struct {
	ID            int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID     string  `gorm:"size:64;index;not null" json:"company_id"`
	EmployeeID    int64   `gorm:"index" json:"employee_id"`
	Course        string  `gorm:"size:255" json:"course"`
	LearningHours float64 `gorm:"default:0" json:"learning_hours"`
	Status        string  `gorm:"size:20" json:"status"`
	StartedAt     int64   `gorm:"index" json:"started_at"`
}

func (TrainingRecord) TableName() string {
	return "training_records"
}
