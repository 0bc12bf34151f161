package domain

// DashboardStats holds the aggregate counts behind the dashboard tiles.
type DashboardStats struct {
	TotalOrders     int `json:"totalOrders"`
	OrdersThisWeek  int `json:"ordersThisWeek"`
	OrdersThisMonth int `json:"ordersThisMonth"`
	TotalProducts   int `json:"totalProducts"`
	TotalCategories int `json:"totalCategories"`
	TotalUsers      int `json:"totalUsers"`
}
