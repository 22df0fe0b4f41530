package global

var (
	// 程序名称
	Name          string = "Food Share Service"
	WebClientName string = "Web"

	// 构建信息，由 ldflags 注入
	Version   string = "dev"
	GitTag    string = ""
	BuildTime string = ""
)
