package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	APIToken string `mapstructure:"api_token"` // 为空则不校验 X-API-TOKEN
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"` // 为空表示未配置队列，消费端使用空实现
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig 交易队列配置
type QueueConfig struct {
	Name     string `mapstructure:"name"`      // Redis list 的 key
	DrainMax int    `mapstructure:"drain_max"` // 单次运行最多消费条数
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"` // 为空表示不发触发事件
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	PipelineTrigger string `mapstructure:"pipeline_trigger"`
}

// PipelineConfig 批处理运行配置
type PipelineConfig struct {
	CSVPath         string          `mapstructure:"csv_path"`         // 次级数据源文件，不存在则走合成数据
	Synthetic       SyntheticConfig `mapstructure:"synthetic"`        // 合成数据必须显式开启，不能悄悄顶替真实数据
	ExclusiveRun    bool            `mapstructure:"exclusive_run"`    // 是否用 Redis 锁保证同一时刻只有一个运行
	IntervalMinutes int             `mapstructure:"interval_minutes"` // >0 时周期运行，否则单次运行
}

type SyntheticConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Count   int  `mapstructure:"count"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("queue.name", "transactions_queue")
	viper.SetDefault("queue.drain_max", 5000)
	viper.SetDefault("pipeline.synthetic.count", 50)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	// 缺少数据库连接目标属于致命配置错误，启动即退出，不产生任何副作用
	if config.MySQL.Host == "" || config.MySQL.Database == "" {
		log.Fatalf("缺少 MySQL 连接配置（mysql.host / mysql.database 必填）")
	}

	return config
}
