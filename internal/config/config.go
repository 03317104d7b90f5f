package config

// Environment variable keys.
const (
	ENV_KEY_APP_ENV = "APP_ENV"
	ENV_KEY_PORT    = "PORT"

	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_SMTP_HOST     = "SMTP_HOST"
	ENV_KEY_SMTP_PORT     = "SMTP_PORT"
	ENV_KEY_SMTP_USERNAME = "SMTP_USERNAME"
	ENV_KEY_SMTP_PASSWORD = "SMTP_PASSWORD"
	ENV_KEY_SMTP_FROM     = "SMTP_FROM"

	ENV_KEY_REDIS_HOST     = "REDIS_HOST"
	ENV_KEY_REDIS_PORT     = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD = "REDIS_PASSWORD"

	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"

	ENV_KEY_OVERDUE_CHECK_HOUR = "OVERDUE_CHECK_HOUR"
	ENV_KEY_DELIVERY_CRON      = "DELIVERY_CRON"
	ENV_KEY_REMINDER_LEAD_DAYS = "REMINDER_LEAD_DAYS"
	ENV_KEY_LOAN_PERIOD_DAYS   = "LOAN_PERIOD_DAYS"
)

// Task type names registered on the queue.
const (
	TASK_CHECK_OVERDUE   = "notification:check_overdue"
	TASK_CHECK_DUE_SOON  = "notification:check_due_soon"
	TASK_DELIVER_PENDING = "notification:deliver_pending"
)
