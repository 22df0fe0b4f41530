package code

// 通用码
var (
	Success = NewSuss(200, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	Failed = NewError(400, lang{
		en:    "Request failed",
		zh_cn: "请求失败",
	})
	ErrorInvalidParams = NewError(10001, lang{
		en:    "Invalid request parameters",
		zh_cn: "请求参数错误",
	})
	ErrorNotUserAuthToken = NewError(10002, lang{
		en:    "Missing auth token",
		zh_cn: "缺少用户认证令牌",
	})
	ErrorInvalidUserAuthToken = NewError(10003, lang{
		en:    "Invalid or expired auth token",
		zh_cn: "用户认证令牌无效或已过期",
	})
	ErrorTooManyRequests = NewError(10004, lang{
		en:    "Too many requests",
		zh_cn: "请求过于频繁",
	})
	ErrorDBQuery = NewError(10005, lang{
		en:    "Database query error",
		zh_cn: "数据库查询错误",
	})
	ErrorServerInternal = NewError(10006, lang{
		en:    "Internal server error",
		zh_cn: "服务内部错误",
	})
)

// 用户
var (
	ErrorUserNotFound = NewError(11001, lang{
		en:    "User does not exist",
		zh_cn: "用户不存在",
	})
	ErrorUserExist = NewError(11002, lang{
		en:    "User already exists",
		zh_cn: "用户已存在",
	})
	ErrorUserLoginFailed = NewError(11003, lang{
		en:    "Wrong account or password",
		zh_cn: "账号或密码错误",
	})
	ErrorUserRegisterDisabled = NewError(11004, lang{
		en:    "Registration is disabled",
		zh_cn: "注册功能已关闭",
	})
)

// 分享帖子 / 领取请求 生命周期
var (
	ErrorPostNotFound = NewError(20001, lang{
		en:    "Post does not exist",
		zh_cn: "帖子不存在",
	})
	ErrorClaimNotFound = NewError(20002, lang{
		en:    "Claim does not exist",
		zh_cn: "领取请求不存在",
	})
	ErrorClaimOwnPost = NewError(20003, lang{
		en:    "You cannot claim your own post",
		zh_cn: "不能领取自己发布的帖子",
	})
	ErrorNotPostOwner = NewError(20004, lang{
		en:    "Only the post owner may perform this action",
		zh_cn: "只有帖子发布者可以执行该操作",
	})
	ErrorNotClaimRequester = NewError(20005, lang{
		en:    "Only the claim requester may perform this action",
		zh_cn: "只有领取请求发起者可以执行该操作",
	})
	ErrorNotClaimParty = NewError(20006, lang{
		en:    "Only the post owner or the requester may perform this action",
		zh_cn: "只有帖子发布者或领取者可以执行该操作",
	})
	ErrorDuplicateClaim = NewError(20007, lang{
		en:    "You already have an active claim on this post",
		zh_cn: "您已对该帖子提交过领取请求",
	})
	ErrorPostAlreadyReserved = NewError(20008, lang{
		en:    "Someone else already claimed this post",
		zh_cn: "该帖子已被其他人领取",
	})
	ErrorPostNotClaimable = NewError(20009, lang{
		en:    "Post is not open for claims",
		zh_cn: "该帖子当前不可领取",
	})
	ErrorPostExpired = NewError(20010, lang{
		en:    "Post has passed its best-before time",
		zh_cn: "该帖子已过期",
	})
	ErrorClaimNotPending = NewError(20011, lang{
		en:    "Claim is no longer pending",
		zh_cn: "领取请求已不在待处理状态",
	})
	ErrorClaimNotAccepted = NewError(20012, lang{
		en:    "Claim has not been accepted",
		zh_cn: "领取请求尚未被接受",
	})
	ErrorClaimNotTerminal = NewError(20013, lang{
		en:    "Only a finished claim can be removed",
		zh_cn: "只有已结束的领取请求才能被删除",
	})
)
