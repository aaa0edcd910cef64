package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Mode         string `yaml:"mode"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
}

type Logger struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	MaxOpenConns int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// JWTConfig JWT认证配置
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours" mapstructure:"expire_hours"`
}

type Database struct {
	Mysql MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
}

// MQConfig RabbitMQ配置
type MQConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	ChannelPoolSize int    `yaml:"channel_pool_size" mapstructure:"channel_pool_size"`
	// Consumer prefetch for RabbitMQ
	ConsumerPrefetch int `yaml:"consumer_prefetch" mapstructure:"consumer_prefetch"`
}

// DispatchConfig 派单配置
type DispatchConfig struct {
	// 派单锁TTL（秒）同一宿舍+商品同时只允许一次派单
	LockTTLSeconds int `yaml:"lock_ttl_seconds" mapstructure:"lock_ttl_seconds"`
	// 分组视图缓存TTL（秒） 0表示不缓存
	GroupCacheTTLSeconds int `yaml:"group_cache_ttl_seconds" mapstructure:"group_cache_ttl_seconds"`
	// 类目需要关联查询后在内存里过滤 所以按倍率多取一些候选订单
	OverfetchFactor int `yaml:"overfetch_factor" mapstructure:"overfetch_factor"`
}

// ReconcilerConfig 宿舍ID回填任务配置
type ReconcilerConfig struct {
	// 每轮最多处理多少个未解析订单
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	// 轮询间隔（秒）
	IntervalSeconds int `yaml:"interval_seconds" mapstructure:"interval_seconds"`
}

// RateLimitRule 单个限流规则
type RateLimitRule struct {
	RPS   int `yaml:"rps" mapstructure:"rps"`     // 每秒请求数
	Burst int `yaml:"burst" mapstructure:"burst"` // 令牌桶容量
}

// RateLimitsConfig 多路由限流配置
type RateLimitsConfig struct {
	Global   RateLimitRule `yaml:"global" mapstructure:"global"`
	Dispatch RateLimitRule `yaml:"dispatch" mapstructure:"dispatch"`
	Order    RateLimitRule `yaml:"order" mapstructure:"order"`
}

// Config 总配置结构体，嵌套所有子配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   Database         `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Logger     Logger           `yaml:"log" mapstructure:"log"`
	MQ         MQConfig         `yaml:"mq"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	RateLimits RateLimitsConfig `yaml:"rate_limits" mapstructure:"rate_limits"`
}

func InitConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 读取内容
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败:%v", err)
	}

	var globalConfig Config
	if err := viper.Unmarshal(&globalConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败:%v", err)
	}

	applyDefaults(&globalConfig)

	return &globalConfig, nil
}

// LoadConfig 加载配置文件并返回配置对象
// 这个函数简化了配置加载过程，默认加载config.yaml
func LoadConfig() (*Config, error) {
	cfg, err := InitConfig("config/config.yaml")
	if err != nil {
		// 尝试当前目录
		cfg, err = InitConfig("../../config/config.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %v", err)
		}
	}

	return cfg, nil
}

// applyDefaults 补充默认配置避免零值导致意外无限制或过度阻塞
func applyDefaults(cfg *Config) {
	if cfg.RateLimits.Global.RPS == 0 {
		cfg.RateLimits.Global.RPS = 1000
	}
	if cfg.RateLimits.Global.Burst == 0 {
		cfg.RateLimits.Global.Burst = 2000
	}
	if cfg.RateLimits.Dispatch.RPS == 0 {
		cfg.RateLimits.Dispatch.RPS = 50
	}
	if cfg.RateLimits.Dispatch.Burst == 0 {
		cfg.RateLimits.Dispatch.Burst = 100
	}
	if cfg.RateLimits.Order.RPS == 0 {
		cfg.RateLimits.Order.RPS = 500
	}
	if cfg.RateLimits.Order.Burst == 0 {
		cfg.RateLimits.Order.Burst = 1000
	}
	if cfg.MQ.ChannelPoolSize <= 0 {
		cfg.MQ.ChannelPoolSize = 8
	}
	if cfg.MQ.ConsumerPrefetch <= 0 {
		cfg.MQ.ConsumerPrefetch = 200
	}
	if cfg.Dispatch.LockTTLSeconds <= 0 {
		cfg.Dispatch.LockTTLSeconds = 10
	}
	if cfg.Dispatch.OverfetchFactor <= 0 {
		cfg.Dispatch.OverfetchFactor = 2
	}
	if cfg.Reconciler.BatchSize <= 0 {
		cfg.Reconciler.BatchSize = 500
	}
	if cfg.Reconciler.IntervalSeconds <= 0 {
		cfg.Reconciler.IntervalSeconds = 300
	}
}
