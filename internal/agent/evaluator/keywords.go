package evaluator

import "github.com/Wayfarer-core-poc-v1/server/internal/agent/model"

type categoryKeywords struct {
	strong []string
	weak   []string
	weight float64
}

// All keywords are lower case; notes are lower-cased before matching.
var categoryTable = map[model.Category]categoryKeywords{
	model.CategoryRoute: {
		strong: []string{"itinerary", "route", "day 1", "day 2", "day 3", "day1", "day2", "day3", "first day",
			"路线", "行程", "攻略", "第一天", "第二天", "第三天"},
		weak:   []string{"plan", "schedule", "loop", "in order", "规划", "计划", "游玩", "顺序", "安排"},
		weight: 3,
	},
	model.CategoryAttraction: {
		strong: []string{"attraction", "must-see", "must see", "sightseeing", "landmark", "museum", "viewpoint",
			"景点", "必去", "必玩", "打卡", "游览", "参观"},
		weak:   []string{"ticket", "opening hours", "reservation", "queue", "closed on", "门票", "开放时间", "预约", "排队", "闭馆"},
		weight: 3,
	},
	model.CategoryFood: {
		strong: []string{"food", "must-eat", "restaurant", "street food", "snack", "local dish", "cuisine",
			"美食", "必吃", "好吃", "餐厅", "小吃", "特色菜"},
		weak:   []string{"per person", "taste", "signature", "menu", "cafe", "饭店", "人均", "口味", "招牌"},
		weight: 2,
	},
	model.CategoryTransport: {
		strong: []string{"transport", "metro", "subway", "bus", "train", "airport", "station",
			"交通", "地铁", "公交", "高铁", "机场", "怎么去"},
		weak:   []string{"taxi", "walk", "bike", "transfer", "打车", "步行", "骑行", "换乘", "站点"},
		weight: 2,
	},
	model.CategoryAccommodation: {
		strong: []string{"hotel", "hostel", "accommodation", "where to stay", "guesthouse", "airbnb",
			"住宿", "酒店", "民宿", "住哪"},
		weak:   []string{"check-in", "room", "location", "booking", "per night", "入住", "房间", "位置", "预订"},
		weight: 2,
	},
	model.CategoryAvoid: {
		strong: []string{"avoid", "tourist trap", "scam", "don't", "do not", "beware",
			"避坑", "避雷", "踩坑", "别去", "不要"},
		weak:   []string{"careful", "disappointing", "overrated", "regret", "crowded", "小心", "警惕", "差评", "失望", "后悔"},
		weight: 3,
	},
}

// highValueKeywords carry weight in relevance scoring and paragraph compression.
var highValueKeywords = map[string]int{
	// timing
	"day 1": 3, "day 2": 3, "day 3": 3, "第一天": 3, "第二天": 3, "第三天": 3,
	"morning": 1, "afternoon": 1, "evening": 1, "上午": 1, "下午": 1, "晚上": 1,

	// recommendations
	"must-see": 3, "must-eat": 3, "must-try": 3, "highly recommend": 3, "recommend": 2,
	"hidden gem": 2, "local favorite": 2, "locals": 2,
	"必去": 3, "必玩": 3, "必吃": 3, "强烈推荐": 3, "推荐": 2, "本地人": 2, "老字号": 2,

	// practical
	"ticket": 2, "opening hours": 2, "reservation": 2, "free entry": 2, "queue": 2, "closed on": 2,
	"metro": 2, "bus": 2, "price": 2, "per person": 2, "cost": 2,
	"门票": 2, "开放时间": 2, "预约": 2, "免费": 2, "排队": 2, "闭馆": 2,
	"交通": 2, "地铁": 2, "公交": 2, "价格": 2, "人均": 2, "费用": 2,

	// routes
	"itinerary": 3, "route": 3, "on foot": 1,
	"路线": 3, "行程": 3, "攻略": 2, "顺路": 2, "步行": 1,

	// avoid
	"avoid": 3, "tourist trap": 3, "scam": 3, "don't": 2,
	"避坑": 3, "避雷": 3, "踩坑": 3, "不要": 2, "别去": 2, "注意": 2,
}

// lowValueMarkers are advertising or solicitation phrases.
var lowValueMarkers = []string{
	"sponsored", "advertisement", "promo code", "discount code", "coupon", "dm me",
	"link in bio", "click to buy", "limited time", "add me on", "affiliate",
	"广告", "推广", "合作", "优惠券", "限时", "私信", "评论区", "链接", "点击购买",
	"加微信", "加我", "找我", "代购",
}
