package knowledge

// Article is one entry in the static FinOps knowledge corpus. The corpus is
// loaded once at startup; slice order matters, it breaks retrieval ties.
type Article struct {
	Topic   string
	Content string
}

func Corpus() []Article {
	return []Article{
		{
			Topic:   "Cost Optimization Fundamentals",
			Content: "Cost optimization in cloud computing involves rightsizing resources, eliminating waste, and leveraging pricing models effectively. Key principles include monitoring usage patterns, implementing auto-scaling, using reserved instances for predictable workloads, and regularly reviewing resource allocation. The goal is to balance performance requirements with cost efficiency.",
		},
		{
			Topic:   "Resource Rightsizing Strategies",
			Content: "Rightsizing involves matching instance types and sizes to workload requirements. Monitor CPU, memory, and network utilization over time. Resources with consistently low utilization (under 20%) are candidates for downsizing. Consider burstable instances for variable workloads. Use performance metrics over at least 14 days before making decisions.",
		},
		{
			Topic:   "Reserved Instance Optimization",
			Content: "Reserved Instances provide significant discounts (up to 75%) for predictable workloads. Analyze usage patterns over 3-6 months before purchasing. Consider Standard RIs for stable workloads and Convertible RIs for flexibility. Monitor RI utilization regularly and trade unused reservations in the marketplace.",
		},
		{
			Topic:   "Spot Instance Best Practices",
			Content: "Spot instances offer up to 90% savings for fault-tolerant workloads. Suitable for batch processing, CI/CD, development environments, and stateless applications. Implement graceful shutdown handling and use spot fleet requests for availability. Combine with Auto Scaling Groups for resilience.",
		},
		{
			Topic:   "Cost Allocation and Tagging",
			Content: "Proper tagging enables accurate cost allocation and chargeback. Implement mandatory tags: owner, environment, project, cost-center. Use automation to enforce tagging policies. Regularly audit untagged resources. Create cost allocation reports by business unit, project, and environment.",
		},
		{
			Topic:   "Cloud Cost Monitoring",
			Content: "Implement comprehensive cost monitoring with real-time alerts. Set up budget notifications at 80%, 90%, and 100% thresholds. Monitor cost per service, region, and tag. Use anomaly detection to identify unusual spending patterns. Review costs weekly and conduct monthly business reviews.",
		},
		{
			Topic:   "Storage Optimization",
			Content: "Optimize storage costs through lifecycle management and tiering. Move infrequently accessed data to cheaper storage classes. Implement automatic deletion of temporary and backup data. Use compression and deduplication where possible. Monitor storage utilization and growth trends.",
		},
		{
			Topic:   "Network Cost Optimization",
			Content: "Reduce data transfer costs by optimizing traffic patterns. Use CDNs for content delivery. Minimize cross-region and cross-AZ traffic. Implement data compression and caching strategies. Monitor bandwidth utilization and identify optimization opportunities.",
		},
		{
			Topic:   "Auto Scaling Configuration",
			Content: "Configure auto scaling to match demand while controlling costs. Set appropriate scaling policies based on CPU, memory, or custom metrics. Use predictive scaling for known patterns. Implement cool-down periods to prevent rapid scaling. Monitor scaling activities and adjust thresholds.",
		},
		{
			Topic:   "Cost Anomaly Detection",
			Content: "Implement automated anomaly detection to identify unusual cost spikes. Set thresholds based on historical patterns and business cycles. Investigate anomalies within 24 hours. Common causes include misconfigured resources, runaway processes, security incidents, or new deployments.",
		},
		{
			Topic:   "FinOps Team Structure",
			Content: "Establish a FinOps team with clear roles and responsibilities. Include members from finance, engineering, and operations. Define cost optimization goals and KPIs. Conduct regular reviews and training. Foster a culture of cost awareness across the organization.",
		},
		{
			Topic:   "Cloud Vendor Management",
			Content: "Negotiate enterprise agreements and volume discounts. Review pricing regularly and optimize service usage. Understand billing models and hidden costs. Maintain relationships with vendor account teams. Evaluate alternative services and pricing options periodically.",
		},
		{
			Topic:   "Development Environment Optimization",
			Content: "Optimize development and testing environments to reduce costs. Implement automated shutdown schedules for non-production resources. Use smaller instance types for development. Share resources across teams where appropriate. Clean up temporary resources regularly.",
		},
		{
			Topic:   "Disaster Recovery Cost Management",
			Content: "Balance DR requirements with cost efficiency. Use warm standby or pilot light strategies instead of hot standby where appropriate. Leverage automation for DR resource provisioning. Test DR procedures regularly while monitoring costs.",
		},
		{
			Topic:   "Multi-Cloud Cost Management",
			Content: "Manage costs across multiple cloud providers through standardized processes. Use cloud management platforms for unified visibility. Implement consistent tagging and governance across providers. Monitor cross-provider data transfer costs.",
		},
		{
			Topic:   "Container Cost Optimization",
			Content: "Optimize container costs through proper resource requests and limits. Use horizontal pod autoscaling and cluster autoscaling. Implement node selectors for workload placement. Monitor container utilization and rightsize accordingly.",
		},
		{
			Topic:   "Serverless Cost Management",
			Content: "Monitor serverless function costs and execution patterns. Optimize function memory allocation and execution time. Use provisioned concurrency judiciously. Implement proper timeout settings. Consider container alternatives for long-running workloads.",
		},
		{
			Topic:   "Database Cost Optimization",
			Content: "Optimize database costs through proper instance sizing and storage management. Use read replicas to distribute load. Implement connection pooling and caching. Consider serverless databases for variable workloads. Monitor query performance and optimize expensive queries.",
		},
		{
			Topic:   "Security and Compliance Costs",
			Content: "Balance security requirements with cost efficiency. Use native cloud security services where cost-effective. Implement automated compliance checking. Monitor security tool costs and utilization. Consolidate security tools where possible.",
		},
		{
			Topic:   "Cost Governance Policies",
			Content: "Implement governance policies to prevent cost overruns. Use service control policies and IAM restrictions. Require approval for expensive resources. Implement automated resource cleanup. Conduct regular cost reviews and audits.",
		},
		{
			Topic:   "Cloud Migration Cost Planning",
			Content: "Plan cloud migration costs including one-time and ongoing expenses. Consider data transfer costs and timing. Plan for licensing changes and training costs. Use migration assessment tools to estimate costs. Monitor actual vs. projected costs during migration.",
		},
		{
			Topic:   "Cost Attribution Methods",
			Content: "Implement fair cost attribution methods for shared resources. Use allocation keys based on usage, revenue, or headcount. Consider activity-based costing for complex environments. Regularly review and adjust attribution methods.",
		},
		{
			Topic:   "Budget Planning and Forecasting",
			Content: "Develop accurate budget forecasts based on historical data and growth projections. Consider seasonal variations and business cycles. Include buffer for unexpected costs. Use rolling forecasts and update regularly. Track variance against budget.",
		},
		{
			Topic:   "Cost Optimization Tools",
			Content: "Leverage cloud-native and third-party cost optimization tools. Use cost calculators for planning. Implement automated rightsizing recommendations. Use cost optimization dashboards for visibility. Evaluate tool ROI regularly.",
		},
		{
			Topic:   "Chargeback and Showback Models",
			Content: "Implement chargeback models to allocate actual costs to business units. Use showback to create cost awareness without charging. Provide detailed cost reports with actionable insights. Implement cost centers and profit centers appropriately.",
		},
	}
}
