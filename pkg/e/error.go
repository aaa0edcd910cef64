package e

// 错误码定义
const (
	SUCCESS        = 0
	ERROR          = 1
	INVALID_PARAMS = 2

	ERROR_AUTH_CHECK_TOKEN_FAIL    = 10001
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT = 10002
	ERROR_AUTH_TOKEN               = 10003
	ERROR_AUTH                     = 10004
	ERROR_AUTH_NOT_ADMIN           = 10005

	ERROR_USER_EXISTS     = 20001
	ERROR_USER_NOT_EXISTS = 20002
	ERROR_PASSWORD        = 20003

	ERROR_PRODUCT_NOT_EXISTS  = 30001
	ERROR_CATEGORY_NOT_EXISTS = 30002

	ERROR_ORDER_NOT_EXISTS   = 40001
	ERROR_NO_PLACED_ORDERS   = 40002
	ERROR_NO_EXACT_MATCH     = 40003
	ERROR_DISPATCH_LOCKED    = 40004
	ERROR_ORDER_STATUS       = 40005

	ERROR_LOCATION_NOT_EXISTS = 50001
	ERROR_HOSTEL_NOT_EXISTS   = 50002
	ERROR_HOSTEL_EXISTS       = 50003
	ERROR_MAPPING_EXISTS      = 50004
	ERROR_INVALID_COORDS      = 50005
	ERROR_OUT_OF_DELIVERY     = 50006
)

var MsgFlags = map[int]string{
	SUCCESS:        "成功",
	ERROR:          "失败",
	INVALID_PARAMS: "请求参数错误",

	ERROR_AUTH_CHECK_TOKEN_FAIL:    "Token验证失败",
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT: "Token已超时",
	ERROR_AUTH_TOKEN:               "Token生成失败",
	ERROR_AUTH:                     "认证失败",
	ERROR_AUTH_NOT_ADMIN:           "需要管理员权限",

	ERROR_USER_EXISTS:     "用户已存在",
	ERROR_USER_NOT_EXISTS: "用户不存在",
	ERROR_PASSWORD:        "密码错误",

	ERROR_PRODUCT_NOT_EXISTS:  "商品不存在",
	ERROR_CATEGORY_NOT_EXISTS: "类目不存在",

	ERROR_ORDER_NOT_EXISTS: "订单不存在",
	ERROR_NO_PLACED_ORDERS: "没有待派送的订单",
	ERROR_NO_EXACT_MATCH:   "没有完全匹配的订单",
	ERROR_DISPATCH_LOCKED:  "该商品正在派单中，请稍后再试",
	ERROR_ORDER_STATUS:     "订单状态不允许该操作",

	ERROR_LOCATION_NOT_EXISTS: "配送区域不存在",
	ERROR_HOSTEL_NOT_EXISTS:   "宿舍不存在",
	ERROR_HOSTEL_EXISTS:       "该区域下宿舍已存在",
	ERROR_MAPPING_EXISTS:      "该配送地址映射已存在",
	ERROR_INVALID_COORDS:      "经纬度不合法",
	ERROR_OUT_OF_DELIVERY:     "超出配送范围",
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}
	return MsgFlags[ERROR]
}
