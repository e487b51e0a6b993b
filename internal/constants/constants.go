package constants

// 文档集合名称
const (
	CollectionUsers        = "users"
	CollectionUserPlans    = "userPlans"
	CollectionFitnessPlans = "fitnessPlans"
)

// 训练等级
const (
	ExerciseLevelBeginner     = "Beginner"
	ExerciseLevelIntermediate = "Intermediate"
	ExerciseLevelAdvanced     = "Advanced"
)

// 训练计划目录来源
const (
	CatalogSourceEmbedded   = "embedded"
	CatalogSourceCollection = "collection"
)

// 进度取值范围
const (
	ProgressMin  = 0
	ProgressMax  = 100
	ProgressStep = 10
)

// 用户资料默认值
const (
	DefaultUserDOB      = "2006-12-30"
	DefaultUserHeight   = "170 cm"
	DefaultUserWeight   = "60 kg"
	DefaultUserNickname = "User"
	DefaultUserEmail    = "N/A"
)

// 异步队列
const (
	QueueDefault             = "default"
	TaskPlanProgressSync     = "plan:progress_sync"
	TaskPlanProgressSyncName = "plan_progress_sync"
)

// 助手会话
const (
	AssistantTextModeMessageLimit = 5
	AssistantRoleUser             = "user"
	AssistantRoleAssistant        = "assistant"
)

// 请求上下文键
const (
	ContextKeyUserID        = "user_id"
	ContextKeyUserEmail     = "user_email"
	ContextKeyUserFirstName = "user_first_name"
	ContextKeySessionID     = "session_id"
)

// 购物车会话
const (
	SessionCookieName   = "nf_session"
	SessionHeader       = "X-Session-ID"
	CartSnapshotKeyPref = "cart"
)
